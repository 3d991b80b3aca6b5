package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/go-course-marketplace/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	got []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.got = append(f.got, sent{to, subject, text, html})
	return f.err
}

func body(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcess_RendersTemplate(t *testing.T) {
	s := &fakeSender{}
	data := mailtpl.ToMap(mailtpl.NewEmailData(mailtpl.Branding{AppName: "Coursely"}, mailtpl.Welcome, "Ana", "", mailtpl.WithRole("student")))
	err := process(context.Background(), s, body(t, mailer.EmailJob{To: "ana@example.com", Template: "Welcome", Data: data}))
	require.NoError(t, err)

	require.Len(t, s.got, 1)
	assert.Equal(t, "ana@example.com", s.got[0].to)
	assert.Equal(t, "Welcome to Coursely", s.got[0].subject)
	assert.Contains(t, s.got[0].html, "ana@example.com")
}

func TestProcess_RawMessage(t *testing.T) {
	s := &fakeSender{}
	err := process(context.Background(), s, body(t, mailer.EmailJob{To: "a@example.com", Subject: "Hi", Text: "plain"}))
	require.NoError(t, err)
	assert.Equal(t, sent{"a@example.com", "Hi", "plain", ""}, s.got[0])
}

func TestProcess_Poison(t *testing.T) {
	s := &fakeSender{}
	cases := [][]byte{
		[]byte("{not json"),
		body(t, mailer.EmailJob{Template: "welcome"}),
		body(t, mailer.EmailJob{To: "a@example.com", Template: "login_otp"}),
		body(t, mailer.EmailJob{To: "a@example.com"}),
	}
	for _, b := range cases {
		assert.ErrorIs(t, process(context.Background(), s, b), errPoison, string(b))
	}
	assert.Empty(t, s.got)
}

func TestProcess_SendFailureIsRetryable(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun 503")}
	err := process(context.Background(), s, body(t, mailer.EmailJob{To: "a@example.com", Subject: "Hi", Text: "x"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errPoison)
}
