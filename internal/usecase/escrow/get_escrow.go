package escrow

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type GetEscrowUseCase struct {
	contracts repository.ContractRepository
}

func NewGetEscrowUseCase(contracts repository.ContractRepository) *GetEscrowUseCase {
	return &GetEscrowUseCase{contracts: contracts}
}

// Execute возвращает контракт с состоянием эскроу. Доступно обеим сторонам.
func (uc *GetEscrowUseCase) Execute(ctx context.Context, contractID, callerID uuid.UUID) (*entity.Contract, error) {
	contract, err := uc.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(callerID) {
		return nil, apperror.ErrForbidden
	}
	return contract, nil
}
