package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-course-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
)

type AccountService struct {
	Store    repo.Store
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAccountService(store repo.Store, notifier *Notifier, logger *logrus.Logger) *AccountService {
	return &AccountService{Store: store, Notifier: notifier, Logger: logger, Now: time.Now}
}

// DeleteAccount removes the caller, every course they own and every roster
// entry they hold, all in one transaction. On failure nothing changes.
func (s *AccountService) DeleteAccount(ctx context.Context, p *Principal) error {
	if err := Authorize(p); err != nil {
		return err
	}
	var (
		user           *entity.User
		coursesDeleted int
		enrollments    int
	)
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		u, err := tx.Users().GetForUpdate(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Wrap(apperr.KindUnauthorized, err, "account no longer exists")
			}
			return err
		}
		switch u.Role {
		case entity.RoleInstructor:
			if coursesDeleted, err = tx.Courses().DeleteByInstructor(ctx, u.ID); err != nil {
				return err
			}
		case entity.RoleStudent:
		}
		if enrollments, err = tx.Courses().RemoveStudentFromAll(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, u.ID); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		helpers.LogError(s.Logger, "delete account failed", err, logrus.Fields{"user_id": p.UserID})
		return err
	}
	helpers.LogInfo(s.Logger, "account deleted", logrus.Fields{
		"user_id":         user.ID,
		"courses_deleted": coursesDeleted,
		"enrollments":     enrollments,
	})
	at := time.Now().UTC()
	if s.Now != nil {
		at = s.Now().UTC()
	}
	s.Notifier.AccountDeleted(ctx, user, coursesDeleted, at)
	return nil
}
