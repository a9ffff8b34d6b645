package app

import (
	"kaziflow_backend/internal/logger"
)

// MockEmailProvider logs instead of sending. Used when SMTP is not
// configured.
type MockEmailProvider struct{}

func (m *MockEmailProvider) SendTaskAssigned(to, taskTitle string) error {
	logger.Info("[MOCK EMAIL] task assigned", "to", to, "task", taskTitle)
	return nil
}

func (m *MockEmailProvider) SendReviewDecision(to, taskTitle string, approved bool) error {
	logger.Info("[MOCK EMAIL] review decision", "to", to, "task", taskTitle, "approved", approved)
	return nil
}

func (m *MockEmailProvider) SendActivationReceipt(to, reference string, amountCents int64) error {
	logger.Info("[MOCK EMAIL] activation receipt", "to", to, "reference", reference, "amount_cents", amountCents)
	return nil
}
