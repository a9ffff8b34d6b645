package models

type UserRole string
type SubscriptionTier string
type TaskStatus string
type BidStatus string
type TransactionType string
type TransactionStatus string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleWriter UserRole = "writer"
	UserRoleGuest  UserRole = "guest"

	TierBasic SubscriptionTier = "basic"
	TierPro   SubscriptionTier = "pro"
	TierElite SubscriptionTier = "elite"

	TaskStatusOpen      TaskStatus = "open"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusReview    TaskStatus = "review"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusRejected  TaskStatus = "rejected"
	TaskStatusExpired   TaskStatus = "expired"

	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"

	TransactionActivationFee TransactionType = "activation_fee"
	TransactionPayout        TransactionType = "payout"
	TransactionWithdrawal    TransactionType = "withdrawal"
	TransactionSubscription  TransactionType = "subscription"

	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusComplete TransactionStatus = "complete"
	TransactionStatusFailed   TransactionStatus = "failed"
)

// ValidTaskTransitions is the task state machine. COMPLETED and EXPIRED
// are terminal, REJECTED re-enters REVIEW through resubmission by the
// assignee. EXPIRED is only reachable from OPEN, applied by the deadline
// sweeper; assigned work is never expired out from under a writer.
var ValidTaskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusOpen:      {TaskStatusAssigned, TaskStatusExpired},
	TaskStatusAssigned:  {TaskStatusReview},
	TaskStatusReview:    {TaskStatusCompleted, TaskStatusRejected},
	TaskStatusRejected:  {TaskStatusReview},
	TaskStatusCompleted: {},
	TaskStatusExpired:   {},
}

// CanTransition reports whether moving a task from one status to another
// follows the lifecycle graph.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range ValidTaskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t SubscriptionTier) Valid() bool {
	return t == TierBasic || t == TierPro || t == TierElite
}
