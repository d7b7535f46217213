package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/dto"
	"github.com/ignatzorin/honeyjobs-backend/internal/interface/http/response"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/escrow"
)

type escrowInitiator interface {
	Execute(ctx context.Context, contractID, callerID uuid.UUID) (*escrow.InitiateEscrowOutput, error)
}

type escrowReleaser interface {
	Execute(ctx context.Context, contractID, callerID uuid.UUID) (*escrow.ReleaseEscrowOutput, error)
}

type escrowReader interface {
	Execute(ctx context.Context, contractID, callerID uuid.UUID) (*entity.Contract, error)
}

type EscrowHandler struct {
	initiateUC escrowInitiator
	releaseUC  escrowReleaser
	getUC      escrowReader
}

func NewEscrowHandler(initiateUC escrowInitiator, releaseUC escrowReleaser, getUC escrowReader) *EscrowHandler {
	return &EscrowHandler{initiateUC: initiateUC, releaseUC: releaseUC, getUC: getUC}
}

// Initiate обслуживает POST /api/contracts/:id/escrow.
func (h *EscrowHandler) Initiate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	out, err := h.initiateUC.Execute(c.Request.Context(), contractID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToInitiateEscrowResponse(out))
}

// Get обслуживает GET /api/contracts/:id/escrow.
func (h *EscrowHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	contract, err := h.getUC.Execute(c.Request.Context(), contractID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToEscrowResponse(contract))
}

// Release обслуживает POST /api/contracts/:id/escrow/release.
func (h *EscrowHandler) Release(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	out, err := h.releaseUC.Execute(c.Request.Context(), contractID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReleaseEscrowResponse(out))
}
