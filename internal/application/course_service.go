package application

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-course-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
)

// CourseInput carries the fields of a new course. A nil LessonCount means 0.
type CourseInput struct {
	Title         string
	Description   string
	Price         float64
	Tags          []string
	DurationLabel string
	LessonCount   *int
	ThumbnailRef  string
	Materials     []entity.Material
}

// CourseView is a course as the public catalog shows it.
type CourseView struct {
	Course     *entity.Course
	Instructor *entity.InstructorProjection
}

type CourseService struct {
	Store    repo.Store
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewCourseService(store repo.Store, notifier *Notifier, logger *logrus.Logger) *CourseService {
	return &CourseService{Store: store, Notifier: notifier, Logger: logger, Now: time.Now}
}

func (s *CourseService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func withMaterialIDs(in []entity.Material) []entity.Material {
	out := slices.Clone(in)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// Create publishes a new course owned by the calling instructor.
func (s *CourseService) Create(ctx context.Context, p *Principal, in CourseInput) (*entity.Course, error) {
	if err := Authorize(p, RoleIs(entity.RoleInstructor)); err != nil {
		return nil, err
	}
	now := s.now()
	c := &entity.Course{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         in.Price,
		Tags:          slices.Clone(in.Tags),
		DurationLabel: in.DurationLabel,
		ThumbnailRef:  in.ThumbnailRef,
		Materials:     withMaterialIDs(in.Materials),
		InstructorID:  p.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.LessonCount != nil {
		c.LessonCount = *in.LessonCount
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.Store.Courses().Create(ctx, c); err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "course created", logrus.Fields{"course_id": c.ID, "instructor_id": c.InstructorID})
	return c, nil
}

// List returns the whole catalog in creation order. Only the instructor
// projection of each owner is exposed.
func (s *CourseService) List(ctx context.Context) ([]CourseView, error) {
	courses, err := s.Store.Courses().List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		if !slices.Contains(ids, c.InstructorID) {
			ids = append(ids, c.InstructorID)
		}
	}
	owners, err := s.Store.Users().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		v := CourseView{Course: c}
		if u, ok := owners[c.InstructorID]; ok {
			proj := u.Projection()
			v.Instructor = &proj
		}
		views = append(views, v)
	}
	return views, nil
}

// Update applies patch to a course the caller owns.
func (s *CourseService) Update(ctx context.Context, p *Principal, courseID string, patch entity.CoursePatch) (*entity.Course, error) {
	if err := Authorize(p, RoleIs(entity.RoleInstructor)); err != nil {
		return nil, err
	}
	var out *entity.Course
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		c, err := tx.Courses().GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := Authorize(p, Owns(c.InstructorID)); err != nil {
			return err
		}
		if patch.IsEmpty() {
			out = c
			return nil
		}
		patch.Apply(c)
		c.Title = strings.TrimSpace(c.Title)
		if patch.Materials != nil {
			c.Materials = withMaterialIDs(c.Materials)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		c.InstructorID = p.UserID
		c.UpdatedAt = s.now()
		if err := tx.Courses().UpdateOwned(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a course the caller owns together with its roster.
func (s *CourseService) Delete(ctx context.Context, p *Principal, courseID string) error {
	if err := Authorize(p, RoleIs(entity.RoleInstructor)); err != nil {
		return err
	}
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		c, err := tx.Courses().GetForUpdate(ctx, courseID)
		if err != nil {
			return err
		}
		if err := Authorize(p, Owns(c.InstructorID)); err != nil {
			return err
		}
		return tx.Courses().DeleteOwned(ctx, courseID, p.UserID)
	})
	if err != nil {
		return err
	}
	helpers.LogInfo(s.Logger, "course deleted", logrus.Fields{"course_id": courseID, "instructor_id": p.UserID})
	return nil
}

// Enroll adds the caller to the course roster. Of concurrent calls for the
// same pair exactly one succeeds; the rest get AlreadyEnrolled.
func (s *CourseService) Enroll(ctx context.Context, p *Principal, courseID string) (*entity.Course, error) {
	if err := Authorize(p); err != nil {
		return nil, err
	}
	if err := s.Store.Courses().AddStudent(ctx, courseID, p.UserID); err != nil {
		return nil, err
	}
	c, err := s.Store.Courses().GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "student enrolled", logrus.Fields{"course_id": courseID, "user_id": p.UserID})
	if s.Notifier.Enabled() {
		if u, uerr := s.Store.Users().GetByID(ctx, p.UserID); uerr == nil {
			s.Notifier.EnrollmentConfirmed(ctx, u, c, s.now())
		}
	}
	return c, nil
}
