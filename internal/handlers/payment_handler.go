package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"kaziflow_backend/internal/middleware"
	"kaziflow_backend/internal/payment"
	"kaziflow_backend/internal/services"
	"kaziflow_backend/internal/services/dto"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService *services.PaymentService
	walletService  *services.WalletService
}

func NewPaymentHandler(base *BaseHandler, paymentService *services.PaymentService, walletService *services.WalletService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
		walletService:  walletService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.POST("/activate", h.InitiateActivation)
		payments.POST("/upgrade", h.InitiateTierUpgrade)
	}

	wallet := r.Group("/wallet")
	wallet.Use(middleware.AuthMiddleware())
	{
		wallet.GET("", h.GetWallet)
	}

	// Gateway webhook. Authenticated by the provider's HMAC signature,
	// not by a user token.
	r.POST("/payments/callback", h.GatewayCallback)
}

func (h *PaymentHandler) InitiateActivation(c *gin.Context) {
	var req dto.InitiateActivationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	resp, err := h.paymentService.InitiateActivation(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusAccepted
	if !resp.Accepted {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

func (h *PaymentHandler) InitiateTierUpgrade(c *gin.Context) {
	var req struct {
		Tier        string `json:"tier" validate:"required,oneof=pro elite"`
		PhoneNumber string `json:"phone_number" validate:"required,min=10"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	upgrade := dto.UpgradeTierRequest{Tier: req.Tier}
	resp, err := h.paymentService.InitiateTierUpgrade(c.Request.Context(), middleware.GetUserID(c), &upgrade, req.PhoneNumber)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusAccepted
	if !resp.Accepted {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

// GatewayCallback receives settlement webhooks from the payment provider.
// The body must carry the provider's HMAC signature; unsigned or forged
// callbacks are rejected before any settlement processing.
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}

	var cb payment.Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}
	cb.RawPayload = body

	if err := h.paymentService.HandleProviderWebhook(c.Request.Context(), cb); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Callback processed"})
}

func (h *PaymentHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletService.GetWallet(middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}
