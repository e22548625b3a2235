package mailer

// Job kinds understood by the email worker.
const (
	JobVerifyEmail   = "verify_email"
	JobResetPassword = "reset_password"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Kind selects the subject and body template; Data carries the template
// values (for example the verification link).
type EmailJob struct {
	To      string         `json:"to"`
	Kind    string         `json:"kind"`
	Subject string         `json:"subject,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
