package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"kaziflow_backend/internal/middleware"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/internal/validator"
	"kaziflow_backend/pkg/apperrors"
)

type TaskHandler struct {
	*BaseHandler
	taskService *services.TaskService
	bidService  *services.BidService
	profileRepo repositories.ProfileRepository
}

func NewTaskHandler(base *BaseHandler, taskService *services.TaskService, bidService *services.BidService, profileRepo repositories.ProfileRepository) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		taskService: taskService,
		bidService:  bidService,
		profileRepo: profileRepo,
	}
}

func (h *TaskHandler) RegisterRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	tasks.Use(middleware.AuthMiddleware())
	{
		tasks.GET("", h.BrowseTasks)
		tasks.GET("/my", h.MyJobs)
		tasks.GET("/:taskId", h.GetTask)
	}

	// Submission requires a settled activation payment.
	activated := r.Group("/tasks")
	activated.Use(middleware.AuthMiddleware(), middleware.RequireActivated(h.profileRepo))
	{
		activated.POST("/:taskId/submit", h.SubmitTask)
	}

	admin := r.Group("/tasks")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateTask)
		admin.POST("/seed", h.SeedSampleTasks)
		admin.GET("/all", h.AllTasks)
		admin.GET("/review", h.ReviewQueue)
		admin.POST("/:taskId/assign", h.AssignTask)
		admin.POST("/:taskId/approve", h.ApproveTask)
		admin.POST("/:taskId/reject", h.RejectTask)
	}
}

// BrowseTasks returns the open board with bid counts and the caller's
// own-bid markers, both resolved in bulk.
func (h *TaskHandler) BrowseTasks(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tasks, err := h.taskService.ListOpenTasks()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	counts, err := h.bidService.AggregateBidCounts(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	bidSet, err := h.bidService.MyBidSet(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp := dto.NewTaskResponse(&tasks[i])
		resp.BidCount = counts[tasks[i].ID]
		resp.HasBid = bidSet.Has(tasks[i].ID)
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, gin.H{"tasks": responses, "total": len(responses)})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Param("taskId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTaskResponse(task))
}

func (h *TaskHandler) MyJobs(c *gin.Context) {
	userID := middleware.GetUserID(c)
	tasks, err := h.taskService.ListMyJobs(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, dto.NewTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses, "total": len(responses)})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	task, err := h.taskService.CreateTask(middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTaskResponse(task))
}

func (h *TaskHandler) SeedSampleTasks(c *gin.Context) {
	created, err := h.taskService.SeedSampleTasks(middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

func (h *TaskHandler) AssignTask(c *gin.Context) {
	var req dto.AssignTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.taskService.AssignTask(c.Param("taskId"), req.WriterID, middleware.GetUserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task assigned"})
}

// SubmitTask accepts a multipart form: "notes" plus an optional "file"
// artifact.
func (h *TaskHandler) SubmitTask(c *gin.Context) {
	req := dto.SubmitTaskRequest{Notes: c.PostForm("notes")}
	if err := h.validator.Validate(&req); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			h.HandleServiceError(c, err)
		}
		return
	}

	var (
		reader   io.Reader
		filename string
	)
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			h.HandleServiceError(c, openErr)
			return
		}
		defer file.Close()
		reader = file
		filename = fileHeader.Filename
	}

	err := h.taskService.SubmitTask(c.Request.Context(), c.Param("taskId"), middleware.GetUserID(c), &req, reader, filename)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Submitted for review"})
}

// AllTasks returns every task regardless of status, newest first.
func (h *TaskHandler) AllTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, dto.NewTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses, "total": len(responses)})
}

func (h *TaskHandler) ReviewQueue(c *gin.Context) {
	tasks, err := h.taskService.ListReviewQueue(middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, dto.NewTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": responses, "total": len(responses)})
}

func (h *TaskHandler) ApproveTask(c *gin.Context) {
	if err := h.taskService.ApproveTask(c.Param("taskId"), middleware.GetUserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task approved"})
}

func (h *TaskHandler) RejectTask(c *gin.Context) {
	if err := h.taskService.RejectTask(c.Param("taskId"), middleware.GetUserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task rejected"})
}
