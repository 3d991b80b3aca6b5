package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/domain/repository"
)

func seed(t *testing.T, s *Store) (instructor, student *entity.User, course *entity.Course) {
	t.Helper()
	ctx := context.Background()
	instructor = &entity.User{ID: "i1", Name: "Ines", Email: "Ines@Example.com", Role: entity.RoleInstructor}
	student = &entity.User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: entity.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, instructor))
	require.NoError(t, s.Users().Create(ctx, student))
	course = &entity.Course{ID: "c1", Title: "Go", InstructorID: instructor.ID, CreatedAt: time.Now()}
	require.NoError(t, s.Courses().Create(ctx, course))
	return instructor, student, course
}

func TestUserRepository_EmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	u, err := s.Users().GetByEmail(ctx, "INES@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "i1", u.ID)
	assert.Equal(t, "ines@example.com", u.Email)

	err = s.Users().Create(ctx, &entity.User{ID: "x", Email: "ines@EXAMPLE.com", Role: entity.RoleStudent})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
}

func TestCourseRepository_AddStudentTwice(t *testing.T) {
	t.Parallel()
	s := NewStore()
	_, student, course := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Courses().AddStudent(ctx, course.ID, student.ID))
	assert.ErrorIs(t, s.Courses().AddStudent(ctx, course.ID, student.ID), apperr.ErrAlreadyEnrolled)
	assert.ErrorIs(t, s.Courses().AddStudent(ctx, "missing", student.ID), apperr.ErrNotFound)

	got, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, got.EnrolledStudentIDs)
}

func TestCourseRepository_AddStudentConcurrent(t *testing.T) {
	t.Parallel()
	s := NewStore()
	_, student, course := seed(t, s)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Courses().AddStudent(ctx, course.ID, student.ID)
		}()
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadyEnrolled):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestCourseRepository_OwnedWrites(t *testing.T) {
	t.Parallel()
	s := NewStore()
	instructor, _, course := seed(t, s)
	ctx := context.Background()

	other := course.Clone()
	other.InstructorID = "intruder"
	other.Title = "hijacked"
	assert.ErrorIs(t, s.Courses().UpdateOwned(ctx, other), apperr.ErrForbidden)
	assert.ErrorIs(t, s.Courses().DeleteOwned(ctx, course.ID, "intruder"), apperr.ErrForbidden)
	assert.ErrorIs(t, s.Courses().DeleteOwned(ctx, "nope", instructor.ID), apperr.ErrNotFound)

	upd := course.Clone()
	upd.Title = "Go, revised"
	require.NoError(t, s.Courses().UpdateOwned(ctx, upd))
	got, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go, revised", got.Title)

	require.NoError(t, s.Courses().DeleteOwned(ctx, course.ID, instructor.ID))
	_, err = s.Courses().GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	t.Parallel()
	s := NewStore()
	instructor, student, course := seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.Courses().AddStudent(ctx, course.ID, student.ID))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Courses().DeleteByInstructor(ctx, instructor.ID); err != nil {
			return err
		}
		if _, err := tx.Courses().RemoveStudentFromAll(ctx, student.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, got.EnrolledStudentIDs)
}

func TestUserRepository_DeleteRefusesOwner(t *testing.T) {
	t.Parallel()
	s := NewStore()
	instructor, _, _ := seed(t, s)

	err := s.Users().Delete(context.Background(), instructor.ID)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}

func TestStore_WithinTxRollsBackOnPanic(t *testing.T) {
	t.Parallel()
	s := NewStore()
	instructor, student, course := seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.Courses().AddStudent(ctx, course.ID, student.ID))

	assert.PanicsWithValue(t, "cascade interrupted", func() {
		_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
			if _, err := tx.Courses().DeleteByInstructor(ctx, instructor.ID); err != nil {
				return err
			}
			panic("cascade interrupted")
		})
	})

	got, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{student.ID}, got.EnrolledStudentIDs)

	// the lock was released
	_, err = s.Users().GetByID(ctx, instructor.ID)
	assert.NoError(t, err)
}
