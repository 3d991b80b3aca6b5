package templates

import (
	"strings"
	"time"
)

// Branding is the sender identity shared by every notification.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithRole(role string) Option { return func(d *EmailData) { d.Role = role } }

func WithCourse(id, title string, lessons int) Option {
	return func(d *EmailData) {
		d.CourseID = id
		d.CourseTitle = strings.TrimSpace(title)
		d.LessonCount = lessons
	}
}

func WithCoursesCount(n int) Option { return func(d *EmailData) { d.CoursesCount = n } }

// NewEmailData fills branding and recipient fields, then applies options.
func NewEmailData(b Branding, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		SupportURL:     b.SupportURL,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
