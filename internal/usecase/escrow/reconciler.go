package escrow

import (
	"context"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
)

const (
	reconcileBatchSize = 100
	reconcileMaxPages  = 50
)

type escrowSyncer interface {
	Execute(ctx context.Context, paymentID string) (*WebhookResult, error)
}

// Reconciler периодически перечитывает у провайдера эскроу, зависшие в pending,
// на случай потерянных вебхуков.
type Reconciler struct {
	contracts repository.ContractRepository
	syncer    escrowSyncer
	after     time.Duration
	timeout   time.Duration
	metrics   *metrics.Payments
	cron      *cron.Cron
}

func NewReconciler(contracts repository.ContractRepository, syncer escrowSyncer, after time.Duration, m *metrics.Payments) *Reconciler {
	return &Reconciler{
		contracts: contracts,
		syncer:    syncer,
		after:     after,
		timeout:   2 * time.Minute,
		metrics:   m,
	}
}

// RunOnce обходит все ожидающие эскроу старше порога постранично. Ошибка
// по одному контракту не прерывает обработку остальных.
func (r *Reconciler) RunOnce(ctx context.Context) (checked, failed int, err error) {
	createdBefore := time.Now().Add(-r.after)
	var cursor *repository.PendingEscrowCursor

	for page := 0; page < reconcileMaxPages; page++ {
		contracts, err := r.contracts.ListPendingEscrows(ctx, createdBefore, cursor, reconcileBatchSize)
		if err != nil {
			return checked, failed, err
		}

		for _, c := range contracts {
			if !c.HasEscrowPayment() {
				continue
			}
			checked++
			if !r.sync(ctx, c) {
				failed++
			}
		}

		if len(contracts) < reconcileBatchSize {
			return checked, failed, nil
		}
		last := contracts[len(contracts)-1]
		if last.Escrow.CreatedAt == nil {
			return checked, failed, nil
		}
		cursor = &repository.PendingEscrowCursor{CreatedAt: *last.Escrow.CreatedAt, ID: last.ID}

		if err := ctx.Err(); err != nil {
			return checked, failed, err
		}
	}

	logger.Log.WithField("checked", checked).Warn("escrow: сверка остановлена на лимите страниц")
	return checked, failed, nil
}

func (r *Reconciler) sync(ctx context.Context, c *entity.Contract) bool {
	result, err := r.syncer.Execute(ctx, *c.Escrow.PaymentID)
	r.metrics.Reconciled(err)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"contract_id": c.ID,
			"payment_id":  *c.Escrow.PaymentID,
		}).WithError(err).Warn("escrow: сверка не удалась")
		return false
	}
	logger.Log.WithFields(logrus.Fields{
		"contract_id": c.ID,
		"outcome":     result.Outcome,
	}).Debug("escrow: эскроу сверен")
	return true
}

// Start запускает сверку по расписанию cron (например, "@every 5m").
func (r *Reconciler) Start(schedule string) error {
	c := cron.New()
	err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		checked, failed, err := r.RunOnce(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("escrow: не удалось получить ожидающие эскроу")
			return
		}
		if checked > 0 {
			logger.Log.WithFields(logrus.Fields{"checked": checked, "failed": failed}).Info("escrow: сверка завершена")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	r.cron = c
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}
