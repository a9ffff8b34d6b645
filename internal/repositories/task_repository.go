package repositories

import (
	"time"

	"kaziflow_backend/internal/models"

	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id string) (*models.Task, error)
	ListAll() ([]models.Task, error)
	ListOpen() ([]models.Task, error)
	ListByAssignee(userID string) ([]models.Task, error)
	ListByStatus(status models.TaskStatus) ([]models.Task, error)

	// AssignIfOpen conditionally moves an OPEN, unassigned task to ASSIGNED.
	// Returns ErrTaskConflict when another assignment won the race.
	AssignIfOpen(taskID, writerID string) error

	// SetSubmission moves an ASSIGNED or REJECTED task held by the assignee
	// into REVIEW, recording the artifact.
	SetSubmission(taskID, assigneeID, notes, url string) error

	// UpdateStatusFrom is a compare-and-swap on status.
	UpdateStatusFrom(taskID string, from, to models.TaskStatus) error

	// ExpireOpenPastDeadline sweeps OPEN, unassigned tasks whose deadline
	// has passed into EXPIRED. Returns the number of rows swept.
	ExpireOpenPastDeadline() (int64, error)
}

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(task *models.Task) error {
	return classify(r.db.Create(task).Error, ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) FindByID(id string) (*models.Task, error) {
	var task models.Task
	err := r.db.First(&task, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, ErrTaskNotFound)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListAll() ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Order("created_at DESC").Find(&tasks).Error
	return tasks, classify(err, ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) ListOpen() ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("status = ?", models.TaskStatusOpen).
		Order("created_at DESC").Find(&tasks).Error
	return tasks, classify(err, ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) ListByAssignee(userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("assigned_to = ?", userID).
		Order("deadline ASC").Find(&tasks).Error
	return tasks, classify(err, ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) ListByStatus(status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").Find(&tasks).Error
	return tasks, classify(err, ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) AssignIfOpen(taskID, writerID string) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ? AND assigned_to IS NULL", taskID, models.TaskStatusOpen).
		Updates(map[string]interface{}{
			"status":      models.TaskStatusAssigned,
			"assigned_to": writerID,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(taskID)
	}
	return nil
}

func (r *TaskRepositoryImpl) SetSubmission(taskID, assigneeID, notes, url string) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND assigned_to = ? AND status IN ?",
			taskID, assigneeID,
			[]models.TaskStatus{models.TaskStatusAssigned, models.TaskStatusRejected}).
		Updates(map[string]interface{}{
			"status":           models.TaskStatusReview,
			"submission_notes": notes,
			"submission_url":   url,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(taskID)
	}
	return nil
}

func (r *TaskRepositoryImpl) UpdateStatusFrom(taskID string, from, to models.TaskStatus) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return classify(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(taskID)
	}
	return nil
}

func (r *TaskRepositoryImpl) ExpireOpenPastDeadline() (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("status = ? AND assigned_to IS NULL AND deadline < ?", models.TaskStatusOpen, time.Now()).
		Updates(map[string]interface{}{
			"status":     models.TaskStatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, classify(result.Error, ErrTaskNotFound)
}

// missOrConflict tells a vanished row apart from a lost race.
func (r *TaskRepositoryImpl) missOrConflict(taskID string) error {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return classify(err, ErrTaskNotFound)
	}
	if count == 0 {
		return ErrTaskNotFound
	}
	return ErrTaskConflict
}
