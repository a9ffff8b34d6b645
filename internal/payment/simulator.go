package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"kaziflow_backend/internal/logger"
)

// Simulator stands in for the real M-PESA STK push integration. It accepts
// or rejects the push synchronously and delivers settlement through the
// sink after a short delay, matching the push-based contract of the real
// gateway.
type Simulator struct {
	delay time.Duration
	sink  CallbackSink

	quit      chan struct{}
	closeOnce sync.Once
}

func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{delay: delay, quit: make(chan struct{})}
}

// Start ties pending settlement deliveries to the application lifecycle.
// Matches the background worker contract.
func (s *Simulator) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Close drops any settlements still waiting on the delay timer.
func (s *Simulator) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

// SetSink registers the settlement consumer. Must be called before the
// first Initiate.
func (s *Simulator) SetSink(sink CallbackSink) {
	s.sink = sink
}

func (s *Simulator) Initiate(ctx context.Context, userID, phone string, amountCents int64) (InitiateResult, error) {
	if countDigits(phone) < 10 {
		return InitiateResult{Accepted: false, Reason: "Invalid phone number"}, nil
	}
	if amountCents <= 0 {
		return InitiateResult{Accepted: false, Reason: "Invalid amount"}, nil
	}

	cb := Callback{
		UserID:      userID,
		PhoneNumber: phone,
		Reference:   newReference(),
		AmountCents: amountCents,
		Status:      "complete",
	}
	cb.RawPayload, _ = json.Marshal(cb)

	// Settlement outlives the initiating request: the provider confirms on
	// its own clock, long after the HTTP request that triggered the push
	// has completed. Only simulator shutdown cancels a pending delivery.
	go func() {
		select {
		case <-time.After(s.delay):
		case <-s.quit:
			return
		}
		if s.sink == nil {
			logger.Warn("payment callback dropped, no sink registered", "reference", cb.Reference)
			return
		}
		if err := s.sink(context.Background(), cb); err != nil {
			logger.Error("payment callback processing failed", "reference", cb.Reference, logger.Err(err))
		}
	}()

	return InitiateResult{Accepted: true, Reason: "STK Push sent. Check your phone."}, nil
}

func newReference() string {
	return fmt.Sprintf("SB%s", strings.ToUpper(fmt.Sprintf("%08x", rand.Uint32())))
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
