package memory

import (
	"context"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/domain/repository"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.s.exec(func(d *dataset) error {
		email := entity.NormalizeEmail(u.Email)
		if _, taken := d.emails[email]; taken {
			return apperr.ErrEmailTaken
		}
		u.Email = email
		cp := *u
		d.users[u.ID] = &cp
		d.emails[email] = u.ID
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.exec(func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r *UserRepository) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.s.exec(func(d *dataset) error {
		id, ok := d.emails[entity.NormalizeEmail(email)]
		if !ok {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		cp := *d.users[id]
		out = &cp
		return nil
	})
	return out, err
}

func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	out := make(map[string]*entity.User, len(ids))
	err := r.s.exec(func(d *dataset) error {
		for _, id := range ids {
			if u, ok := d.users[id]; ok {
				cp := *u
				out[id] = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.s.exec(func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		for _, c := range d.courses {
			if c.InstructorID == id {
				return apperr.New(apperr.KindStorageUnavailable, "user still owns courses")
			}
		}
		delete(d.emails, u.Email)
		delete(d.users, id)
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
