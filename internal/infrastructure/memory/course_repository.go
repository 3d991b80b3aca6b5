package memory

import (
	"context"
	"slices"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/domain/repository"
)

type CourseRepository struct {
	s *Store
}

func errCourseNotFound() error { return apperr.New(apperr.KindNotFound, "course not found") }

func errNotOwner() error {
	return apperr.New(apperr.KindForbidden, "only the course instructor may modify this course")
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	return r.s.exec(func(d *dataset) error {
		owner, ok := d.users[c.InstructorID]
		if !ok || owner.Role != entity.RoleInstructor {
			return apperr.New(apperr.KindForbidden, "instructor does not exist")
		}
		if _, dup := d.courses[c.ID]; dup {
			return apperr.New(apperr.KindStorageUnavailable, "duplicate course id")
		}
		stored := c.Clone()
		stored.EnrolledStudentIDs = nil
		d.courses[c.ID] = stored
		d.courseOrder = append(d.courseOrder, c.ID)
		return nil
	})
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	var out *entity.Course
	err := r.s.exec(func(d *dataset) error {
		c, ok := d.courses[id]
		if !ok {
			return errCourseNotFound()
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

func (r *CourseRepository) GetForUpdate(ctx context.Context, id string) (*entity.Course, error) {
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) List(ctx context.Context) ([]*entity.Course, error) {
	var out []*entity.Course
	err := r.s.exec(func(d *dataset) error {
		out = make([]*entity.Course, 0, len(d.courseOrder))
		for _, id := range d.courseOrder {
			out = append(out, d.courses[id].Clone())
		}
		return nil
	})
	return out, err
}

func (r *CourseRepository) UpdateOwned(ctx context.Context, c *entity.Course) error {
	return r.s.exec(func(d *dataset) error {
		cur, ok := d.courses[c.ID]
		if !ok {
			return errCourseNotFound()
		}
		if cur.InstructorID != c.InstructorID {
			return errNotOwner()
		}
		next := c.Clone()
		// roster and ownership are not writable through an update
		next.InstructorID = cur.InstructorID
		next.EnrolledStudentIDs = cur.EnrolledStudentIDs
		next.CreatedAt = cur.CreatedAt
		d.courses[c.ID] = next
		return nil
	})
}

func (r *CourseRepository) DeleteOwned(ctx context.Context, id, instructorID string) error {
	return r.s.exec(func(d *dataset) error {
		cur, ok := d.courses[id]
		if !ok {
			return errCourseNotFound()
		}
		if cur.InstructorID != instructorID {
			return errNotOwner()
		}
		d.deleteCourse(id)
		return nil
	})
}

func (r *CourseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	return r.s.exec(func(d *dataset) error {
		c, ok := d.courses[courseID]
		if !ok {
			return errCourseNotFound()
		}
		if _, ok := d.users[studentID]; !ok {
			return apperr.New(apperr.KindNotFound, "student not found")
		}
		if slices.Contains(c.EnrolledStudentIDs, studentID) {
			return apperr.New(apperr.KindAlreadyEnrolled, "already enrolled in this course")
		}
		c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, studentID)
		return nil
	})
}

func (r *CourseRepository) DeleteByInstructor(ctx context.Context, instructorID string) (int, error) {
	n := 0
	err := r.s.exec(func(d *dataset) error {
		for _, id := range slices.Clone(d.courseOrder) {
			if d.courses[id].InstructorID == instructorID {
				d.deleteCourse(id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *CourseRepository) RemoveStudentFromAll(ctx context.Context, studentID string) (int, error) {
	n := 0
	err := r.s.exec(func(d *dataset) error {
		for _, c := range d.courses {
			before := len(c.EnrolledStudentIDs)
			c.EnrolledStudentIDs = slices.DeleteFunc(c.EnrolledStudentIDs, func(id string) bool { return id == studentID })
			n += before - len(c.EnrolledStudentIDs)
		}
		return nil
	})
	return n, err
}

func (d *dataset) deleteCourse(id string) {
	delete(d.courses, id)
	d.courseOrder = slices.DeleteFunc(d.courseOrder, func(x string) bool { return x == id })
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
