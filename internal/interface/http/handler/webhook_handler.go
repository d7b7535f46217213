package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/dto"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/escrow"
)

type escrowWebhookProcessor interface {
	Execute(ctx context.Context, paymentID string) (*escrow.WebhookResult, error)
}

type outcomeProcessor interface {
	Execute(ctx context.Context, paymentID string) (valueobject.WebhookOutcome, error)
}

// WebhookHandler принимает уведомления платёжного провайдера. Любой
// обработанный вебхук, в том числе проигнорированный, отвечает 200,
// иначе провайдер будет повторять доставку.
type WebhookHandler struct {
	escrowUC       escrowWebhookProcessor
	purchaseUC     outcomeProcessor
	verificationUC outcomeProcessor
}

func NewWebhookHandler(escrowUC escrowWebhookProcessor, purchaseUC, verificationUC outcomeProcessor) *WebhookHandler {
	return &WebhookHandler{escrowUC: escrowUC, purchaseUC: purchaseUC, verificationUC: verificationUC}
}

// Escrow обслуживает POST /api/webhooks/escrow.
func (h *WebhookHandler) Escrow(c *gin.Context) {
	paymentID := webhookPaymentID(c)
	if paymentID == "" {
		response.Error(c, apperror.New(apperror.ErrCodeValidation, "не передан id платежа"))
		return
	}

	result, err := h.escrowUC.Execute(c.Request.Context(), paymentID)
	if err != nil {
		h.fail(c, "escrow", paymentID, err)
		return
	}
	response.Success(c, dto.WebhookResponse{Outcome: string(result.Outcome)})
}

// HoneyDrops обслуживает POST /api/webhooks/honey-drops.
func (h *WebhookHandler) HoneyDrops(c *gin.Context) {
	h.handleOutcome(c, "honey-drops", h.purchaseUC)
}

// PaymentVerification обслуживает POST /api/webhooks/payment-verification.
func (h *WebhookHandler) PaymentVerification(c *gin.Context) {
	h.handleOutcome(c, "payment-verification", h.verificationUC)
}

func (h *WebhookHandler) handleOutcome(c *gin.Context, kind string, uc outcomeProcessor) {
	paymentID := webhookPaymentID(c)
	if paymentID == "" {
		response.Error(c, apperror.New(apperror.ErrCodeValidation, "не передан id платежа"))
		return
	}

	outcome, err := uc.Execute(c.Request.Context(), paymentID)
	if err != nil {
		h.fail(c, kind, paymentID, err)
		return
	}
	response.Success(c, dto.WebhookResponse{Outcome: string(outcome)})
}

func (h *WebhookHandler) fail(c *gin.Context, kind, paymentID string, err error) {
	logger.Log.WithFields(logrus.Fields{
		"webhook":    kind,
		"payment_id": paymentID,
	}).WithError(err).Warn("webhook: обработка не удалась")
	response.Error(c, err)
}
