package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	TaskHandler    *TaskHandler
	BidHandler     *BidHandler
	PaymentHandler *PaymentHandler
}
