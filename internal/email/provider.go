package email

// Provider sends marketplace notifications. A mock implementation is wired
// when SMTP is not configured.
type Provider interface {
	SendTaskAssigned(to, taskTitle string) error
	SendReviewDecision(to, taskTitle string, approved bool) error
	SendActivationReceipt(to, reference string, amountCents int64) error
}

type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func (c Config) Configured() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}
