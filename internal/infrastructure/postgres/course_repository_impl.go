package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/domain/repository"
)

const courseSelect = `
	SELECT c.id::text, c.instructor_id::text, c.title, c.description, c.price::float8,
	       c.tags, c.duration_label, c.lesson_count, c.thumbnail_ref, c.materials,
	       c.created_at, c.updated_at,
	       ARRAY(SELECT e.student_id::text FROM course_enrollments e
	             WHERE e.course_id = c.id ORDER BY e.enrolled_at, e.student_id)
	FROM courses c`

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func errCourseNotFound() error { return apperr.New(apperr.KindNotFound, "course not found") }

func errInstructorGone() error {
	return apperr.New(apperr.KindForbidden, "instructor does not exist")
}

func errNotOwner() error {
	return apperr.New(apperr.KindForbidden, "only the course instructor may modify this course")
}

func scanCourse(row pgx.Row) (*entity.Course, error) {
	c := &entity.Course{}
	var materials []byte
	err := row.Scan(&c.ID, &c.InstructorID, &c.Title, &c.Description, &c.Price,
		&c.Tags, &c.DurationLabel, &c.LessonCount, &c.ThumbnailRef, &materials,
		&c.CreatedAt, &c.UpdatedAt, &c.EnrolledStudentIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errCourseNotFound()
		}
		return nil, apperr.Storage(err, "read course")
	}
	if len(materials) > 0 {
		if err := json.Unmarshal(materials, &c.Materials); err != nil {
			return nil, apperr.Storage(err, "decode course materials")
		}
	}
	return c, nil
}

func encodeMaterials(m []entity.Material) ([]byte, error) {
	if m == nil {
		m = []entity.Material{}
	}
	return json.Marshal(m)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	materials, err := encodeMaterials(c.Materials)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "materials are not encodable")
	}
	// the instructor role is re-checked in the same statement that inserts
	res, err := r.db.Exec(ctx, `
		INSERT INTO courses (id, instructor_id, title, description, price, tags, duration_label,
		                     lesson_count, thumbnail_ref, materials, created_at, updated_at)
		SELECT $1, u.id, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		FROM users u WHERE u.id = $2 AND u.role = 'instructor'
	`, c.ID, c.InstructorID, c.Title, c.Description, c.Price, nonNilTags(c.Tags), c.DurationLabel,
		c.LessonCount, c.ThumbnailRef, materials, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		// the instructor row was deleted between the SELECT and the FK check
		if pgCode(err) == codeForeignKeyViolation {
			return errInstructorGone()
		}
		return apperr.Storage(err, "create course")
	}
	if res.RowsAffected() == 0 {
		return errInstructorGone()
	}
	c.EnrolledStudentIDs = nil
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	if !validID(id) {
		return nil, errCourseNotFound()
	}
	return scanCourse(r.db.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
}

func (r *CourseRepository) GetForUpdate(ctx context.Context, id string) (*entity.Course, error) {
	if !validID(id) {
		return nil, errCourseNotFound()
	}
	return scanCourse(r.db.QueryRow(ctx, courseSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id))
}

func (r *CourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	rows, err := r.db.Query(ctx, courseSelect+` ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, apperr.Storage(err, "list courses")
	}
	defer rows.Close()
	out := []*entity.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list courses")
	}
	return out, nil
}

// ownershipMiss tells NotFound from Forbidden after a conditional write hit no rows.
func (r *CourseRepository) ownershipMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id).Scan(&exists); err != nil {
		return apperr.Storage(err, "check course")
	}
	if !exists {
		return errCourseNotFound()
	}
	return errNotOwner()
}

func (r *CourseRepository) UpdateOwned(ctx context.Context, c *entity.Course) error {
	if !validID(c.ID) {
		return errCourseNotFound()
	}
	materials, err := encodeMaterials(c.Materials)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "materials are not encodable")
	}
	res, err := r.db.Exec(ctx, `
		UPDATE courses
		SET title = $3, description = $4, price = $5, tags = $6, duration_label = $7,
		    lesson_count = $8, thumbnail_ref = $9, materials = $10, updated_at = $11
		WHERE id = $1 AND instructor_id = $2
	`, c.ID, c.InstructorID, c.Title, c.Description, c.Price, nonNilTags(c.Tags), c.DurationLabel,
		c.LessonCount, c.ThumbnailRef, materials, c.UpdatedAt)
	if err != nil {
		return apperr.Storage(err, "update course")
	}
	if res.RowsAffected() == 0 {
		return r.ownershipMiss(ctx, c.ID)
	}
	return nil
}

func (r *CourseRepository) DeleteOwned(ctx context.Context, id, instructorID string) error {
	if !validID(id) {
		return errCourseNotFound()
	}
	res, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1 AND instructor_id = $2`, id, instructorID)
	if err != nil {
		return apperr.Storage(err, "delete course")
	}
	if res.RowsAffected() == 0 {
		return r.ownershipMiss(ctx, id)
	}
	return nil
}

func (r *CourseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	if !validID(courseID) {
		return errCourseNotFound()
	}
	// one statement: the primary key makes concurrent inserts of the same pair
	// resolve to exactly one row, and the FK to courses makes an insert racing
	// a course delete fail instead of leaving a dangling row
	res, err := r.db.Exec(ctx, `
		INSERT INTO course_enrollments (course_id, student_id)
		SELECT c.id, $2 FROM courses c WHERE c.id = $1
		ON CONFLICT (course_id, student_id) DO NOTHING
	`, courseID, studentID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return errCourseNotFound()
		}
		return apperr.Storage(err, "enroll student")
	}
	if res.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists); err != nil {
		return apperr.Storage(err, "check course")
	}
	if !exists {
		return errCourseNotFound()
	}
	return apperr.New(apperr.KindAlreadyEnrolled, "already enrolled in this course")
}

func (r *CourseRepository) DeleteByInstructor(ctx context.Context, instructorID string) (int, error) {
	if !validID(instructorID) {
		return 0, nil
	}
	res, err := r.db.Exec(ctx, `DELETE FROM courses WHERE instructor_id = $1`, instructorID)
	if err != nil {
		return 0, apperr.Storage(err, "delete instructor courses")
	}
	return int(res.RowsAffected()), nil
}

func (r *CourseRepository) RemoveStudentFromAll(ctx context.Context, studentID string) (int, error) {
	if !validID(studentID) {
		return 0, nil
	}
	res, err := r.db.Exec(ctx, `DELETE FROM course_enrollments WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, apperr.Storage(err, "remove enrollments")
	}
	return int(res.RowsAffected()), nil
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
