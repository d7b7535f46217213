package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/dto"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/honey"
)

type balanceReader interface {
	Execute(ctx context.Context, userID uuid.UUID) (int, error)
}

type transactionLister interface {
	Execute(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.HoneyTransaction, int, error)
}

type bidSpender interface {
	Execute(ctx context.Context, freelancerID, jobID uuid.UUID) (*entity.JobApplication, error)
}

type applicantRejecter interface {
	Execute(ctx context.Context, clientID, jobID, selectedFreelancerID uuid.UUID) ([]uuid.UUID, error)
}

type purchaseInitiator interface {
	Execute(ctx context.Context, userID uuid.UUID, packageCode string) (*honey.PurchaseOutput, error)
}

type HoneyHandler struct {
	balanceUC      balanceReader
	transactionsUC transactionLister
	bidUC          bidSpender
	rejectUC       applicantRejecter
	purchaseUC     purchaseInitiator
}

func NewHoneyHandler(
	balanceUC balanceReader,
	transactionsUC transactionLister,
	bidUC bidSpender,
	rejectUC applicantRejecter,
	purchaseUC purchaseInitiator,
) *HoneyHandler {
	return &HoneyHandler{
		balanceUC:      balanceUC,
		transactionsUC: transactionsUC,
		bidUC:          bidUC,
		rejectUC:       rejectUC,
		purchaseUC:     purchaseUC,
	}
}

func (h *HoneyHandler) Balance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	balance, err := h.balanceUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.BalanceResponse{Balance: balance})
}

func (h *HoneyHandler) Transactions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	items, total, err := h.transactionsUC.Execute(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, dto.ToHoneyTransactionResponses(items), total, limit, offset)
}

func (h *HoneyHandler) Purchase(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	out, err := h.purchaseUC.Execute(c.Request.Context(), userID, req.Package)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToPurchaseResponse(out))
}

// Bid обслуживает POST /api/jobs/:id/bids.
func (h *HoneyHandler) Bid(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	app, err := h.bidUC.Execute(c.Request.Context(), userID, jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToApplicationResponse(app))
}

// RejectApplicants обслуживает POST /api/jobs/:id/applicants/reject.
func (h *HoneyHandler) RejectApplicants(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RejectApplicantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}
	selectedID, err := uuid.Parse(req.SelectedFreelancerID)
	if err != nil {
		response.BadRequest(c, "selected_freelancer_id должен быть валидным UUID")
		return
	}

	rejected, err := h.rejectUC.Execute(c.Request.Context(), userID, jobID, selectedID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rejected == nil {
		rejected = []uuid.UUID{}
	}
	response.Success(c, dto.RejectApplicantsResponse{Rejected: rejected, RefundedDrops: entity.BidCost})
}
