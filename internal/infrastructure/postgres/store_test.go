package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
)

func TestPgCode(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation})
	assert.Equal(t, codeUniqueViolation, pgCode(wrapped))
	assert.Equal(t, "", pgCode(errors.New("boom")))
	assert.Equal(t, "", pgCode(nil))
}

func TestValidID(t *testing.T) {
	t.Parallel()
	assert.True(t, validID("0b7d3c5e-8f2a-4c61-9d0e-1a2b3c4d5e6f"))
	assert.False(t, validID("c1"))
	assert.False(t, validID(""))
}

func TestEncodeMaterials_NeverNull(t *testing.T) {
	t.Parallel()
	b, err := encodeMaterials(nil)
	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
	assert.Equal(t, []string{}, nonNilTags(nil))
}

// execErrDB fails every Exec with err.
type execErrDB struct{ err error }

func (d execErrDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, d.err
}

func (d execErrDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, d.err }

func (d execErrDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestCourseRepository_CreateInstructorRemovedConcurrently(t *testing.T) {
	t.Parallel()
	c := &entity.Course{
		ID:           "0b7d3c5e-8f2a-4c61-9d0e-1a2b3c4d5e6f",
		InstructorID: "5c1f2a3b-4d5e-4f60-8a9b-0c1d2e3f4a5b",
		Title:        "Go",
		CreatedAt:    time.Now(),
	}

	err := NewCourseRepository(execErrDB{&pgconn.PgError{Code: codeForeignKeyViolation}}).Create(context.Background(), c)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = NewCourseRepository(execErrDB{errors.New("conn reset")}).Create(context.Background(), c)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
}
