package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template names a set in pkg/mailer/templates and Data feeds it; Subject,
// Text and HTML are used as-is when Template is empty.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // welcome, enrollment_confirmed, account_deleted
	Data     map[string]any `json:"data,omitempty"`
}
