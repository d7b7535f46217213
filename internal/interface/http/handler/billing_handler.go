package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/http/middleware"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/dto"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/coupon"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/earning"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/verification"
)

type couponApplier interface {
	Execute(ctx context.Context, userID uuid.UUID, role, code string) (*coupon.ApplyCouponOutput, error)
}

type verificationStarter interface {
	Execute(ctx context.Context, clientID uuid.UUID, email, name string) (*verification.StartVerificationOutput, error)
}

type earningsLister interface {
	Execute(ctx context.Context, userID uuid.UUID, limit, offset int) (*earning.ListMyEarningsOutput, error)
}

// BillingHandler объединяет купоны, подтверждение способа оплаты и начисления.
type BillingHandler struct {
	couponUC       couponApplier
	verificationUC verificationStarter
	earningsUC     earningsLister
}

func NewBillingHandler(couponUC couponApplier, verificationUC verificationStarter, earningsUC earningsLister) *BillingHandler {
	return &BillingHandler{couponUC: couponUC, verificationUC: verificationUC, earningsUC: earningsUC}
}

func (h *BillingHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	out, err := h.couponUC.Execute(c.Request.Context(), userID, middleware.Role(c), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToApplyCouponResponse(out))
}

func (h *BillingHandler) StartVerification(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.StartVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	out, err := h.verificationUC.Execute(c.Request.Context(), userID, req.Email, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.StartVerificationResponse{
		PaymentID:   out.PaymentID,
		CheckoutURL: out.CheckoutURL,
		Amount:      dto.MoneyDTO{Value: out.Amount.Value(), Currency: out.Amount.Currency},
	})
}

func (h *BillingHandler) Earnings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	out, err := h.earningsUC.Execute(c.Request.Context(), userID, parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToEarningsResponse(out))
}
