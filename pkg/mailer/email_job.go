package mailer

// Email template names understood by the worker.
const (
	TemplateResetPassword = "reset_password"
	TemplateWelcome       = "welcome"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. Template+Data render server-side in the worker; Subject/Text/
// HTML can be set directly for raw sends.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
