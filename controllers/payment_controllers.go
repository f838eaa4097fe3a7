package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Stripe   *services.StripeService
}

func NewPaymentController(payments *services.PaymentService, stripe *services.StripeService) *PaymentController {
	return &PaymentController{Payments: payments, Stripe: stripe}
}

// CreateIntent -> opens a provider payment intent for the table's bill
func (pc *PaymentController) CreateIntent(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var body struct {
		DiscountType  string  `json:"discount_type"`
		DiscountValue float64 `json:"discount_value"`
	}
	_ = c.ShouldBindJSON(&body)

	result, err := pc.Payments.CreateIntent(tableID, body.DiscountType, body.DiscountValue)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment intent created", result)
}

// ConfirmIntent -> the client reports the provider checkout finished; settle
// the table from the intent metadata. Safe to call twice.
func (pc *PaymentController) ConfirmIntent(c *gin.Context) {
	intentID := c.Param("intent_id")
	if intentID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("intent id missing"))
		return
	}

	bill, err := pc.Payments.Confirm(intentID, contextUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment confirmed", bill)
}

// HandleWebhook -> provider-pushed events. Signature is verified against the
// raw body; events are observed, never auto-settled.
func (pc *PaymentController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if !pc.Stripe.ValidateSignature(payload, sigHeader) {
		utils.ErrorLogger.Printf("Webhook with invalid signature from %s", c.ClientIP())
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid webhook signature"))
		return
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	pc.Payments.HandleWebhook(event.Type, event.Data.Object.ID)
	utils.RespondJSON(c, http.StatusOK, "Webhook received", nil)
}
