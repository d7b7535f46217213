package earning

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
)

type ListMyEarningsOutput struct {
	Items  []*entity.Earning
	Totals repository.EarningTotals
}

type ListMyEarningsUseCase struct {
	earnings repository.EarningRepository
}

func NewListMyEarningsUseCase(earnings repository.EarningRepository) *ListMyEarningsUseCase {
	return &ListMyEarningsUseCase{earnings: earnings}
}

// Execute возвращает страницу начислений пользователя и итоги по всем его начислениям.
func (uc *ListMyEarningsUseCase) Execute(ctx context.Context, userID uuid.UUID, limit, offset int) (*ListMyEarningsOutput, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, totals, err := uc.earnings.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Earning{}
	}
	return &ListMyEarningsOutput{Items: items, Totals: totals}, nil
}
