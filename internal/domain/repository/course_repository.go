package repository

import (
	"context"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
)

// CourseRepository persists courses and their enrollment rosters.
//
// Writes that mutate an existing course are conditional on the owner: when the
// course exists but belongs to someone else they fail with apperr.ErrForbidden,
// when it does not exist with apperr.ErrNotFound.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	// GetForUpdate locks the course row for the enclosing transaction.
	GetForUpdate(ctx context.Context, id string) (*entity.Course, error)
	// List returns every course in creation order.
	List(ctx context.Context) ([]*entity.Course, error)
	UpdateOwned(ctx context.Context, c *entity.Course) error
	DeleteOwned(ctx context.Context, id, instructorID string) error

	// AddStudent is an atomic set-insert with existence check: exactly one of
	// concurrent calls for the same pair succeeds, the rest get
	// apperr.ErrAlreadyEnrolled. A missing course yields apperr.ErrNotFound.
	AddStudent(ctx context.Context, courseID, studentID string) error

	DeleteByInstructor(ctx context.Context, instructorID string) (int, error)
	RemoveStudentFromAll(ctx context.Context, studentID string) (int, error)
}
