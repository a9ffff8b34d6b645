package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_RejectsInvalidInput(t *testing.T) {
	sim := NewSimulator(time.Millisecond)

	result, err := sim.Initiate(context.Background(), "u1", "12345", 50000)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, "Invalid phone number", result.Reason)

	result, err = sim.Initiate(context.Background(), "u1", "0712345678", 0)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, "Invalid amount", result.Reason)
}

func TestSimulator_DeliversCallbackToSink(t *testing.T) {
	sim := NewSimulator(5 * time.Millisecond)

	received := make(chan Callback, 1)
	sim.SetSink(func(ctx context.Context, cb Callback) error {
		received <- cb
		return nil
	})

	result, err := sim.Initiate(context.Background(), "u1", "+254 712 345 678", 50000)
	require.NoError(t, err)
	require.True(t, result.Accepted)

	select {
	case cb := <-received:
		assert.Equal(t, "u1", cb.UserID)
		assert.Equal(t, int64(50000), cb.AmountCents)
		assert.Equal(t, "complete", cb.Status)
		assert.NotEmpty(t, cb.Reference)
		assert.NotEmpty(t, cb.RawPayload)
	case <-time.After(time.Second):
		t.Fatal("callback never arrived")
	}
}

func TestSimulator_DeliveryOutlivesRequestContext(t *testing.T) {
	sim := NewSimulator(50 * time.Millisecond)

	received := make(chan Callback, 1)
	sim.SetSink(func(ctx context.Context, cb Callback) error {
		received <- cb
		return nil
	})

	// net/http cancels the request context as soon as the handler returns,
	// long before the settlement delay elapses.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := sim.Initiate(r.Context(), "u1", "0712345678", 50000)
		require.NoError(t, err)
		require.True(t, result.Accepted)
		w.WriteHeader(http.StatusAccepted)
	})

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case cb := <-received:
		assert.Equal(t, "u1", cb.UserID)
		assert.Equal(t, "complete", cb.Status)
	case <-time.After(time.Second):
		t.Fatal("settlement dropped when the initiating request finished")
	}
}

func TestSimulator_CloseDropsPendingDelivery(t *testing.T) {
	sim := NewSimulator(50 * time.Millisecond)

	received := make(chan Callback, 1)
	sim.SetSink(func(ctx context.Context, cb Callback) error {
		received <- cb
		return nil
	})

	result, err := sim.Initiate(context.Background(), "u1", "0712345678", 50000)
	require.NoError(t, err)
	require.True(t, result.Accepted)
	sim.Close()

	select {
	case <-received:
		t.Fatal("callback delivered after shutdown")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestSignCallback_RoundTrip(t *testing.T) {
	cb := Callback{
		UserID:      "u1",
		Reference:   "SBDEADBEEF",
		AmountCents: 50000,
		Status:      "complete",
	}

	cb.Signature = SignCallback("hook-secret", cb)
	assert.True(t, VerifyCallback("hook-secret", cb))
	assert.False(t, VerifyCallback("other-secret", cb))

	cb.AmountCents = 1
	assert.False(t, VerifyCallback("hook-secret", cb))
}
