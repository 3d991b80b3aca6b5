package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
	"github.com/oksasatya/go-course-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/go-course-marketplace/pkg/mailer/templates"
)

// Publisher puts a JSON job on the notification queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier emits email jobs after a core operation has committed. It never
// fails the caller: a nil Notifier or publisher is a no-op and publish errors
// are only logged.
type Notifier struct {
	Pub     Publisher
	Brand   mailtpl.Branding
	Logger  *logrus.Logger
	Timeout time.Duration
}

func NewNotifier(pub Publisher, brand mailtpl.Branding, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Logger: logger, Timeout: 3 * time.Second}
}

func (n *Notifier) Enabled() bool { return n != nil && n.Pub != nil }

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.Enabled() || u == nil {
		return
	}
	n.publish(ctx, u.Email, mailtpl.NewEmailData(n.Brand, mailtpl.Welcome, u.Name, u.Email,
		mailtpl.WithRole(u.Role.String()), mailtpl.WithTime(u.CreatedAt)))
}

func (n *Notifier) EnrollmentConfirmed(ctx context.Context, u *entity.User, c *entity.Course, at time.Time) {
	if !n.Enabled() || u == nil || c == nil {
		return
	}
	n.publish(ctx, u.Email, mailtpl.NewEmailData(n.Brand, mailtpl.EnrollmentConfirmed, u.Name, u.Email,
		mailtpl.WithCourse(c.ID, c.Title, c.LessonCount), mailtpl.WithTime(at)))
}

func (n *Notifier) AccountDeleted(ctx context.Context, u *entity.User, coursesDeleted int, at time.Time) {
	if !n.Enabled() || u == nil {
		return
	}
	n.publish(ctx, u.Email, mailtpl.NewEmailData(n.Brand, mailtpl.AccountDeleted, u.Name, u.Email,
		mailtpl.WithRole(u.Role.String()), mailtpl.WithCoursesCount(coursesDeleted), mailtpl.WithTime(at)))
}

func (n *Notifier) publish(ctx context.Context, to string, data mailtpl.EmailData) {
	job := mailer.EmailJob{To: to, Template: data.Type, Data: mailtpl.ToMap(data)}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	// the request may already be finishing; the job should still go out
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := n.Pub.PublishJSON(pctx, job); err != nil {
		helpers.LogError(n.Logger, "publish notification failed", err, logrus.Fields{
			"template": job.Template,
			"to":       to,
		})
	}
}
