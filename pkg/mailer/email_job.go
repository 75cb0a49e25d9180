package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for the email
// worker. Either Template+Data or a raw Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome", "login_notice"
	Data     map[string]any `json:"data,omitempty"`
}
