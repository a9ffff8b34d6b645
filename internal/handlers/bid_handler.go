package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kaziflow_backend/internal/middleware"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/repositories"
	"kaziflow_backend/internal/services"
	"kaziflow_backend/internal/services/dto"
)

type BidHandler struct {
	*BaseHandler
	bidService  *services.BidService
	profileRepo repositories.ProfileRepository
}

func NewBidHandler(base *BaseHandler, bidService *services.BidService, profileRepo repositories.ProfileRepository) *BidHandler {
	return &BidHandler{BaseHandler: base, bidService: bidService, profileRepo: profileRepo}
}

func (h *BidHandler) RegisterRoutes(r *gin.RouterGroup) {
	activated := r.Group("/tasks")
	activated.Use(middleware.AuthMiddleware(), middleware.RequireActivated(h.profileRepo))
	{
		activated.POST("/:taskId/bids", h.PlaceBid)
	}

	admin := r.Group("/tasks")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/:taskId/bids", h.ListBids)
	}

	me := r.Group("/bids")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/my", h.MyBids)
	}
}

// PlaceBid returns 200 with success=false for business rejections the
// writer can act on; transport and authorization failures are errors.
func (h *BidHandler) PlaceBid(c *gin.Context) {
	var req dto.PlaceBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.bidService.PlaceBid(c.Request.Context(), c.Param("taskId"), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Success {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

func (h *BidHandler) ListBids(c *gin.Context) {
	bids, err := h.bidService.ListBidsForTask(c.Param("taskId"), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	responses := make([]dto.BidResponse, 0, len(bids))
	for i := range bids {
		responses = append(responses, dto.NewBidResponse(&bids[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bids": responses, "total": len(responses)})
}

func (h *BidHandler) MyBids(c *gin.Context) {
	bidSet, err := h.bidService.MyBidSet(middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	taskIDs := make([]string, 0, len(bidSet))
	for taskID := range bidSet {
		taskIDs = append(taskIDs, taskID)
	}
	c.JSON(http.StatusOK, gin.H{"task_ids": taskIDs})
}
