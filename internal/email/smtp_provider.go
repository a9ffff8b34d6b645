package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPProvider struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPProvider(cfg Config) (*SMTPProvider, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("smtp not configured")
	}

	return &SMTPProvider{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}, nil
}

func (p *SMTPProvider) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.cfg.FromEmail, p.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return p.dialer.DialAndSend(m)
}

func (p *SMTPProvider) SendTaskAssigned(to, taskTitle string) error {
	body := fmt.Sprintf(
		"Good news! You have been assigned to \"%s\".\n\nLog in to view the brief and the deadline. Submit your work before the deadline to get paid.",
		taskTitle,
	)
	return p.send(to, "You got the job: "+taskTitle, body)
}

func (p *SMTPProvider) SendReviewDecision(to, taskTitle string, approved bool) error {
	if approved {
		body := fmt.Sprintf(
			"Your submission for \"%s\" has been approved. The payout has been credited to your wallet.",
			taskTitle,
		)
		return p.send(to, "Submission approved: "+taskTitle, body)
	}
	body := fmt.Sprintf(
		"Your submission for \"%s\" was not approved. Please review the brief and resubmit.",
		taskTitle,
	)
	return p.send(to, "Submission needs changes: "+taskTitle, body)
}

func (p *SMTPProvider) SendActivationReceipt(to, reference string, amountCents int64) error {
	body := fmt.Sprintf(
		"Your account activation payment of KES %.2f was received (ref %s). You can now apply for tasks.",
		float64(amountCents)/100, reference,
	)
	return p.send(to, "Account activated", body)
}
