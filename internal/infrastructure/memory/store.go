// Package memory is an in-process implementation of repository.Store used for
// local development (STORAGE_BACKEND=memory) and as the backend in tests.
// A single mutex serializes all access, which gives enroll and the account
// cascade the same atomicity the Postgres store gets from row locks.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/domain/repository"
)

type dataset struct {
	users       map[string]*entity.User
	emails      map[string]string // normalized email -> user id
	courses     map[string]*entity.Course
	courseOrder []string
}

func newDataset() *dataset {
	return &dataset{
		users:   map[string]*entity.User{},
		emails:  map[string]string{},
		courses: map[string]*entity.Course{},
	}
}

func (d *dataset) clone() *dataset {
	cp := &dataset{
		users:       make(map[string]*entity.User, len(d.users)),
		emails:      make(map[string]string, len(d.emails)),
		courses:     make(map[string]*entity.Course, len(d.courses)),
		courseOrder: slices.Clone(d.courseOrder),
	}
	for k, u := range d.users {
		uc := *u
		cp.users[k] = &uc
	}
	for k, v := range d.emails {
		cp.emails[k] = v
	}
	for k, c := range d.courses {
		cp.courses[k] = c.Clone()
	}
	return cp
}

type Store struct {
	mu   *sync.Mutex
	data *dataset
	inTx bool
}

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newDataset()}
}

func (s *Store) Users() repository.UserRepository     { return &UserRepository{s: s} }
func (s *Store) Courses() repository.CourseRepository { return &CourseRepository{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			*s.data = *snapshot
		}
	}()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// exec runs fn holding the store lock, unless already inside WithinTx.
func (s *Store) exec(fn func(d *dataset) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

var _ repository.Store = (*Store)(nil)

// Ping always succeeds; the data lives in process.
func (s *Store) Ping(context.Context) error { return nil }
