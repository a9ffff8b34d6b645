package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kaziflow_backend/internal/email"
	"kaziflow_backend/internal/logger"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/internal/storage"
	"kaziflow_backend/pkg/apperrors"
)

// TaskService owns the task lifecycle:
// OPEN -> ASSIGNED -> REVIEW -> {COMPLETED | REJECTED}, with REJECTED
// re-entering REVIEW through resubmission. All transitions are conditional
// updates at the store so concurrent admins cannot double-apply one.
type TaskService struct {
	taskRepo    repositories.TaskRepository
	bidRepo     repositories.BidRepository
	profileRepo repositories.ProfileRepository
	txnRepo     repositories.TransactionRepository
	storage     storage.Storage
	email       email.Provider
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	bidRepo repositories.BidRepository,
	profileRepo repositories.ProfileRepository,
	txnRepo repositories.TransactionRepository,
	storageInstance storage.Storage,
	emailProvider email.Provider,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		bidRepo:     bidRepo,
		profileRepo: profileRepo,
		txnRepo:     txnRepo,
		storage:     storageInstance,
		email:       emailProvider,
	}
}

// Task operations

func (s *TaskService) CreateTask(requesterID string, req *dto.CreateTaskRequest) (*models.Task, error) {
	if err := s.requireAdmin(requesterID); err != nil {
		return nil, err
	}

	if !models.IsValidCategory(req.Category) {
		return nil, apperrors.ValidationError(map[string]string{
			"category": fmt.Sprintf("Unknown category %q", req.Category),
		})
	}
	if req.PriceCents <= 0 {
		return nil, apperrors.ValidationError(map[string]string{
			"price_cents": "Price must be a positive amount",
		})
	}

	task := &models.Task{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Status:      models.TaskStatusOpen,
		Deadline:    time.Now().Add(time.Duration(req.DurationHours) * time.Hour),
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return task, nil
}

// AssignTask moves an OPEN task to ASSIGNED. The update is a conditional
// compare-and-swap: when two admins assign concurrently, exactly one wins
// and the loser gets a Conflict.
func (s *TaskService) AssignTask(taskID, writerID, requesterID string) error {
	if err := s.requireAdmin(requesterID); err != nil {
		return err
	}

	writer, err := s.profileRepo.FindByID(writerID)
	if err != nil {
		return s.translateStoreError(err, "profile")
	}
	if !writer.CanClaimWork() {
		return apperrors.ErrActivationRequired
	}

	if err := s.taskRepo.AssignIfOpen(taskID, writerID); err != nil {
		return s.translateStoreError(err, "task")
	}

	// Assignment decides the bids too: winner accepted, siblings rejected.
	if err := s.bidRepo.MarkAssignment(taskID, writerID); err != nil {
		logger.Warn("failed to update bid statuses after assignment",
			"task_id", taskID, "writer_id", writerID, logger.Err(err))
	}

	go s.notifyAssignment(writer.Email, taskID)

	return nil
}

// SubmitTask uploads the work artifact and moves the task into REVIEW.
// Only the assignee may submit, from ASSIGNED or REJECTED (resubmission).
// An upload failure degrades to a placeholder reference instead of
// blocking the transition.
func (s *TaskService) SubmitTask(ctx context.Context, taskID, requesterID string, req *dto.SubmitTaskRequest, file io.Reader, filename string) error {
	requester, err := s.profileRepo.FindByID(requesterID)
	if err != nil {
		return s.translateStoreError(err, "profile")
	}
	if !requester.CanClaimWork() {
		return apperrors.ErrActivationRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return s.translateStoreError(err, "task")
	}
	if !task.IsAssignee(requesterID) {
		return apperrors.ErrInsufficientPermissions
	}
	if task.Status != models.TaskStatusAssigned && task.Status != models.TaskStatusRejected {
		return apperrors.ErrInvalidStatus("task", "Task is not awaiting submission")
	}

	submissionURL := s.uploadArtifact(ctx, taskID, file, filename)

	if err := s.taskRepo.SetSubmission(taskID, requesterID, req.Notes, submissionURL); err != nil {
		return s.translateStoreError(err, "task")
	}
	return nil
}

// ApproveTask moves a REVIEW task to COMPLETED and records the payout.
// The ledger write degrades with a warning rather than reverting the
// completed transition.
func (s *TaskService) ApproveTask(taskID, requesterID string) error {
	if err := s.requireAdmin(requesterID); err != nil {
		return err
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return s.translateStoreError(err, "task")
	}

	if err := s.taskRepo.UpdateStatusFrom(taskID, models.TaskStatusReview, models.TaskStatusCompleted); err != nil {
		return s.translateStoreError(err, "task")
	}

	if task.AssignedTo != nil {
		s.recordPayout(*task.AssignedTo, task)
		go s.notifyDecision(*task.AssignedTo, task.Title, true)
	}
	return nil
}

// RejectTask moves a REVIEW task to REJECTED. The assignee keeps the task
// and may resubmit, re-entering REVIEW.
func (s *TaskService) RejectTask(taskID, requesterID string) error {
	if err := s.requireAdmin(requesterID); err != nil {
		return err
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return s.translateStoreError(err, "task")
	}

	if err := s.taskRepo.UpdateStatusFrom(taskID, models.TaskStatusReview, models.TaskStatusRejected); err != nil {
		return s.translateStoreError(err, "task")
	}

	if task.AssignedTo != nil {
		go s.notifyDecision(*task.AssignedTo, task.Title, false)
	}
	return nil
}

// Listing

func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return task, nil
}

func (s *TaskService) ListTasks() ([]models.Task, error) {
	tasks, err := s.taskRepo.ListAll()
	if err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return tasks, nil
}

func (s *TaskService) ListOpenTasks() ([]models.Task, error) {
	tasks, err := s.taskRepo.ListOpen()
	if err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return tasks, nil
}

// ListMyJobs returns the writer's assigned tasks ordered by deadline.
func (s *TaskService) ListMyJobs(userID string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByAssignee(userID)
	if err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return tasks, nil
}

// ListReviewQueue returns tasks awaiting review, first-submitted first.
func (s *TaskService) ListReviewQueue(requesterID string) ([]models.Task, error) {
	if err := s.requireAdmin(requesterID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByStatus(models.TaskStatusReview)
	if err != nil {
		return nil, s.translateStoreError(err, "task")
	}
	return tasks, nil
}

// SeedSampleTasks populates the board with a batch of open sample tasks.
func (s *TaskService) SeedSampleTasks(requesterID string) (int, error) {
	if err := s.requireAdmin(requesterID); err != nil {
		return 0, err
	}

	samples := []struct {
		title, category, description string
		priceCents                   int64
		hours                        int
	}{
		{"5 Blog Posts on Fintech Trends", "Content Writing", "Write 5 engaging blog posts about mobile money.", 250000, 48},
		{"Legal Deposition Audio to Text", "Transcription", "Verbatim transcription of a legal deposition. 1 hour audio.", 200000, 72},
		{"Logo Design for Organic Juice", "Graphic Design", "Create a modern logo for 'GreenGlow Juices'.", 500000, 96},
		{"Data Entry: Real Estate", "Data Entry", "Verify and update 200 property listings.", 150000, 48},
		{"Translate Contract (Eng-Swa)", "Translation", "Translate a 10-page rental agreement.", 350000, 120},
	}

	created := 0
	for _, sample := range samples {
		task := &models.Task{
			Title:       sample.title,
			Category:    sample.category,
			Description: sample.description,
			PriceCents:  sample.priceCents,
			Status:      models.TaskStatusOpen,
			Deadline:    time.Now().Add(time.Duration(sample.hours) * time.Hour),
		}
		if err := s.taskRepo.Create(task); err != nil {
			return created, s.translateStoreError(err, "task")
		}
		created++
	}
	return created, nil
}

// Helpers

func (s *TaskService) requireAdmin(requesterID string) error {
	requester, err := s.profileRepo.FindByID(requesterID)
	if err != nil {
		return s.translateStoreError(err, "profile")
	}
	if requester.Role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

// uploadArtifact stores the submission file and returns its public URL.
// On failure it returns an inert placeholder so the REVIEW transition is
// never blocked by blob-store trouble; the degradation is logged as a
// warning distinguishable from hard failures.
func (s *TaskService) uploadArtifact(ctx context.Context, taskID string, file io.Reader, filename string) string {
	if file == nil {
		return placeholderURL(taskID, filename)
	}

	ext := filepath.Ext(filename)
	path := fmt.Sprintf("assignments/%s_%d%s", taskID, time.Now().UnixNano(), ext)

	if err := s.storage.Save(ctx, path, file, ""); err != nil {
		logger.Warn("submission upload failed, using placeholder reference",
			"task_id", taskID, "path", path, logger.Err(err))
		return placeholderURL(taskID, filename)
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		logger.Warn("submission URL resolution failed, using placeholder reference",
			"task_id", taskID, "path", path, logger.Err(err))
		return placeholderURL(taskID, filename)
	}
	return url
}

func placeholderURL(taskID, filename string) string {
	return fmt.Sprintf("pending-upload://%s/%s", taskID, filename)
}

func (s *TaskService) recordPayout(writerID string, task *models.Task) {
	txn := &models.Transaction{
		UserID:      writerID,
		Type:        models.TransactionPayout,
		AmountCents: task.PriceCents,
		Reference:   "PAYOUT-" + uuid.NewString()[:8],
		Status:      models.TransactionStatusComplete,
	}
	if err := s.txnRepo.Create(txn); err != nil {
		logger.Warn("payout ledger write failed, task remains completed",
			"task_id", task.ID, "writer_id", writerID, logger.Err(err))
		return
	}
	if err := s.profileRepo.CreditWallet(writerID, task.PriceCents); err != nil {
		logger.Warn("wallet credit failed after payout ledger write",
			"task_id", task.ID, "writer_id", writerID, logger.Err(err))
	}
}

func (s *TaskService) notifyAssignment(writerEmail, taskID string) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return
	}
	if err := s.email.SendTaskAssigned(writerEmail, task.Title); err != nil {
		logger.Warn("assignment notification failed", "task_id", taskID, logger.Err(err))
	}
}

func (s *TaskService) notifyDecision(writerID, taskTitle string, approved bool) {
	writer, err := s.profileRepo.FindByID(writerID)
	if err != nil {
		return
	}
	if err := s.email.SendReviewDecision(writer.Email, taskTitle, approved); err != nil {
		logger.Warn("review decision notification failed", "writer_id", writerID, logger.Err(err))
	}
}

// translateStoreError maps repository error kinds to the application error
// taxonomy so callers can branch on the code, not on sentinel identity.
func (s *TaskService) translateStoreError(err error, domain string) error {
	switch {
	case errors.Is(err, repositories.ErrTaskNotFound),
		errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, repositories.ErrBidNotFound),
		errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.ErrNotFound(err)
	case errors.Is(err, repositories.ErrTaskConflict):
		return apperrors.ErrConflict(err, domain, "Task was updated concurrently, re-fetch and retry")
	case errors.Is(err, repositories.ErrPermissionDenied):
		return apperrors.ErrPermissionDenied(err, domain, "Store rejected the operation: check access policy")
	case errors.Is(err, repositories.ErrStoreUnavailable):
		return apperrors.ErrTransientIO(err, domain)
	default:
		return apperrors.InternalError(err)
	}
}
