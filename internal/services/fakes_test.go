package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"kaziflow_backend/internal/email"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/payment"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/storage"
)

// In-memory repository fakes. They honor the same contracts as the
// postgres implementations, including the conditional-update semantics,
// so the services can be tested without a database.

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	grants   map[string]bool
	tokens   map[string]*models.RefreshToken
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[string]*models.Profile),
		grants:   make(map[string]bool),
		tokens:   make(map[string]*models.RefreshToken),
	}
}

func (r *fakeProfileRepo) add(p *models.Profile) *models.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.profiles[p.ID] = p
	return p
}

func (r *fakeProfileRepo) FindByID(id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) FindByEmail(email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) Create(profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == profile.Email {
			return repositories.ErrProfileExists
		}
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cp := *profile
	r.profiles[profile.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Activate(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.IsActive = true
	return nil
}

func (r *fakeProfileRepo) UpdateTier(userID string, tier models.SubscriptionTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.Tier = tier
	return nil
}

func (r *fakeProfileRepo) CreditWallet(userID string, amountCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.WalletBalanceCents += amountCents
	return nil
}

func (r *fakeProfileRepo) HasAdminGrant(email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grants[email], nil
}

func (r *fakeProfileRepo) SeedAdminGrants(emails []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range emails {
		r.grants[e] = true
	}
	return nil
}

func (r *fakeProfileRepo) CreateRefreshToken(token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *fakeProfileRepo) FindRefreshToken(token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeProfileRepo) DeleteRefreshToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeProfileRepo) DeleteUserRefreshTokens(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*models.Task)}
}

func (r *fakeTaskRepo) add(t *models.Task) *models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.tasks[t.ID] = t
	return t
}

func (r *fakeTaskRepo) Create(task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) ListAll() ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) ListOpen() ([]models.Task, error) {
	return r.listByStatus(models.TaskStatusOpen)
}

func (r *fakeTaskRepo) ListByAssignee(userID string) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, t := range r.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByStatus(status models.TaskStatus) ([]models.Task, error) {
	return r.listByStatus(status)
}

func (r *fakeTaskRepo) listByStatus(status models.TaskStatus) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, t := range r.tasks {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) AssignIfOpen(taskID, writerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return repositories.ErrTaskNotFound
	}
	if t.Status != models.TaskStatusOpen || t.AssignedTo != nil {
		return repositories.ErrTaskConflict
	}
	t.Status = models.TaskStatusAssigned
	t.AssignedTo = &writerID
	return nil
}

func (r *fakeTaskRepo) SetSubmission(taskID, assigneeID, notes, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return repositories.ErrTaskNotFound
	}
	if t.AssignedTo == nil || *t.AssignedTo != assigneeID {
		return repositories.ErrTaskConflict
	}
	if t.Status != models.TaskStatusAssigned && t.Status != models.TaskStatusRejected {
		return repositories.ErrTaskConflict
	}
	t.Status = models.TaskStatusReview
	t.SubmissionNotes = &notes
	t.SubmissionURL = &url
	return nil
}

func (r *fakeTaskRepo) ExpireOpenPastDeadline() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	now := time.Now()
	for _, t := range r.tasks {
		if t.Status == models.TaskStatusOpen && t.AssignedTo == nil && t.Deadline.Before(now) {
			t.Status = models.TaskStatusExpired
			swept++
		}
	}
	return swept, nil
}

func (r *fakeTaskRepo) UpdateStatusFrom(taskID string, from, to models.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return repositories.ErrTaskNotFound
	}
	if t.Status != from {
		return repositories.ErrTaskConflict
	}
	t.Status = to
	return nil
}

type fakeBidRepo struct {
	mu        sync.Mutex
	bids      map[string]*models.Bid
	createErr error
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{bids: make(map[string]*models.Bid)}
}

func (r *fakeBidRepo) Create(bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, b := range r.bids {
		if b.TaskID == bid.TaskID && b.UserID == bid.UserID {
			return repositories.ErrDuplicateBid
		}
	}
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	cp := *bid
	r.bids[bid.ID] = &cp
	return nil
}

func (r *fakeBidRepo) FindByID(id string) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[id]
	if !ok {
		return nil, repositories.ErrBidNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBidRepo) ExistsByTaskAndUser(taskID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.TaskID == taskID && b.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBidRepo) ListByTask(taskID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bid
	for _, b := range r.bids {
		if b.TaskID == taskID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) ListByUser(userID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bid
	for _, b := range r.bids {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) CountByTask() (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bids {
		counts[b.TaskID]++
	}
	return counts, nil
}

func (r *fakeBidRepo) MarkAssignment(taskID, winnerUserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.TaskID != taskID {
			continue
		}
		if b.UserID == winnerUserID {
			b.Status = models.BidStatusAccepted
		} else if b.Status == models.BidStatusPending {
			b.Status = models.BidStatusRejected
		}
	}
	return nil
}

type fakeTxnRepo struct {
	mu   sync.Mutex
	txns []models.Transaction
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{}
}

func (r *fakeTxnRepo) Create(txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	r.txns = append(r.txns, *txn)
	return nil
}

func (r *fakeTxnRepo) ListByUser(userID string) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, t := range r.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu    sync.Mutex
	saved map[string][]byte
	fail  bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	if s.fail {
		return context.DeadlineExceeded
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[path] = data
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, repositories.ErrStoreUnavailable
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error { return nil }

func (s *fakeStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[path]
	return ok, nil
}

func (s *fakeStorage) GetURL(ctx context.Context, path string) (string, error) {
	if s.fail {
		return "", context.DeadlineExceeded
	}
	return "/files/" + path, nil
}

type recordingEmail struct {
	mu       sync.Mutex
	assigned []string
	receipts []string
}

func (e *recordingEmail) SendTaskAssigned(to, taskTitle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assigned = append(e.assigned, to)
	return nil
}

func (e *recordingEmail) SendReviewDecision(to, taskTitle string, approved bool) error {
	return nil
}

func (e *recordingEmail) SendActivationReceipt(to, reference string, amountCents int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.receipts = append(e.receipts, to)
	return nil
}

type stubGateway struct {
	mu       sync.Mutex
	accepted bool
	reason   string
	calls    []int64
}

func (g *stubGateway) Initiate(ctx context.Context, userID, phone string, amountCents int64) (payment.InitiateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, amountCents)
	return payment.InitiateResult{Accepted: g.accepted, Reason: g.reason}, nil
}

// Interface conformance checks.
var (
	_ repositories.ProfileRepository     = (*fakeProfileRepo)(nil)
	_ repositories.TaskRepository        = (*fakeTaskRepo)(nil)
	_ repositories.BidRepository         = (*fakeBidRepo)(nil)
	_ repositories.TransactionRepository = (*fakeTxnRepo)(nil)
	_ payment.Gateway                    = (*stubGateway)(nil)
	_ storage.Storage                    = (*fakeStorage)(nil)
	_ email.Provider                     = (*recordingEmail)(nil)
)
