package payment

import (
	"context"
)

// InitiateResult is the synchronous acknowledgement of an STK push request.
// Settlement arrives later through the callback sink.
type InitiateResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// Callback is a settlement notification from the gateway. In production
// this is the body of the provider's webhook POST.
type Callback struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`    // "complete" | "failed"
	Signature   string `json:"signature"` // provider HMAC, set on HTTP webhooks only
	RawPayload  []byte `json:"-"`
}

// CallbackSink consumes settlement notifications.
type CallbackSink func(ctx context.Context, cb Callback) error

// Gateway initiates mobile-money payments. Confirmation is push-based:
// Initiate never blocks until settlement.
type Gateway interface {
	Initiate(ctx context.Context, userID, phone string, amountCents int64) (InitiateResult, error)
}
