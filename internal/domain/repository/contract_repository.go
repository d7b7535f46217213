package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error)

	// AttachEscrowPayment сохраняет новый эскроу-платёж, только если эскроу
	// в статусе none или failed. Иначе возвращает apperror.ErrEscrowAlreadyExists.
	AttachEscrowPayment(ctx context.Context, contract *entity.Contract) error

	// UpdateEscrowStatus записывает состояние эскроу, если в базе всё ещё статус from
	// и тот же payment id. false - состояние уже изменил кто-то другой.
	UpdateEscrowStatus(ctx context.Context, contract *entity.Contract, from valueobject.EscrowStatus) (bool, error)

	// CompleteRelease в одной транзакции переводит эскроу paid→released, завершает
	// контракт и задание и записывает начисление фрилансеру.
	CompleteRelease(ctx context.Context, contract *entity.Contract, earning *entity.Earning) error

	// ListPendingEscrows отдаёт страницу эскроу в статусе pending, созданных раньше
	// createdBefore, по порядку (escrow_created_at, id) строго после курсора after.
	// nil - с начала.
	ListPendingEscrows(ctx context.Context, createdBefore time.Time, after *PendingEscrowCursor, limit int) ([]*entity.Contract, error)
}

// PendingEscrowCursor - позиция последней прочитанной строки при обходе ожидающих эскроу.
type PendingEscrowCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}
