package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-course-marketplace/pkg/mailer"
)

// EnsureRecipientAndEmail fills Email and RecipientEmail from job.To when the
// producer left them empty.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// NormalizeTemplate lowercases the template name and backfills Data["Type"].
func NormalizeTemplate(job *mailer.EmailJob) {
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Template == "" {
		return
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Type"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		job.Data["Type"] = job.Template
	}
}
