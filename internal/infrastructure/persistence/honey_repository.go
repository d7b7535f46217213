package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
	"github.com/ignatzorin/honeyjobs-backend/internal/repository/common"
)

type jobRow struct {
	ID          uuid.UUID  `db:"id"`
	ClientID    uuid.UUID  `db:"client_id"`
	Title       string     `db:"title"`
	Status      string     `db:"status"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row, err := common.GetByID[jobRow](ctx, r.db, "jobs", id, apperror.ErrJobNotFound)
	if err != nil {
		if errors.Is(err, apperror.ErrJobNotFound) {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось получить задание")
	}

	return &entity.Job{
		ID:          row.ID,
		ClientID:    row.ClientID,
		Title:       row.Title,
		Status:      valueobject.JobStatus(row.Status),
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

type honeyTransactionRow struct {
	ID               uuid.UUID  `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`
	Type             string     `db:"type"`
	Amount           int        `db:"amount"`
	JobID            *uuid.UUID `db:"job_id"`
	PaymentReference *string    `db:"payment_reference"`
	Description      string     `db:"description"`
	CreatedAt        time.Time  `db:"created_at"`
}

type HoneyRepository struct {
	db *sqlx.DB
}

func NewHoneyRepository(db *sqlx.DB) *HoneyRepository {
	return &HoneyRepository{db: db}
}

func (r *HoneyRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM honey_balances WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, apperror.Database(err, "не удалось получить баланс honey drops")
	}
	return balance, nil
}

func (r *HoneyRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.HoneyTransaction, int, error) {
	var rows []honeyTransactionRow
	query := `
		SELECT id, user_id, type, amount, job_id, payment_reference, description, created_at
		FROM honey_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, 0, apperror.Database(err, "не удалось получить историю honey drops")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM honey_transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, apperror.Database(err, "не удалось посчитать историю honey drops")
	}

	result := make([]*entity.HoneyTransaction, 0, len(rows))
	for _, row := range rows {
		result = append(result, &entity.HoneyTransaction{
			ID:               row.ID,
			UserID:           row.UserID,
			Type:             entity.HoneyTransactionType(row.Type),
			Amount:           row.Amount,
			JobID:            row.JobID,
			PaymentReference: row.PaymentReference,
			Description:      row.Description,
			CreatedAt:        row.CreatedAt,
		})
	}
	return result, total, nil
}

func (r *HoneyRepository) SpendForBid(ctx context.Context, debit *entity.HoneyTransaction, app *entity.JobApplication) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE honey_balances SET balance = balance - $2, updated_at = $3
			WHERE user_id = $1 AND balance >= $2
		`, debit.UserID, -debit.Amount, debit.CreatedAt)
		if err != nil {
			return apperror.Database(err, "не удалось списать honey drops")
		}
		if err := common.RequireAffected(result, apperror.ErrInsufficientDrops); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO job_applications (id, job_id, freelancer_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, app.ID, app.JobID, app.FreelancerID, string(app.Status), app.CreatedAt)
		if err != nil {
			if common.IsUniqueViolation(err) {
				return apperror.ErrAlreadyApplied
			}
			return apperror.Database(err, "не удалось сохранить отклик")
		}

		_, err = insertHoneyTransaction(ctx, tx, debit, false)
		return err
	})
}

func (r *HoneyRepository) Credit(ctx context.Context, credit *entity.HoneyTransaction) (bool, error) {
	credited := false
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		inserted, err := insertHoneyTransaction(ctx, tx, credit, true)
		if err != nil || !inserted {
			return err
		}
		credited = true
		return addToBalance(ctx, tx, credit.UserID, credit.Amount, credit.CreatedAt)
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

func (r *HoneyRepository) RejectApplicants(ctx context.Context, jobID, selectedFreelancerID uuid.UUID, refundDrops int) ([]uuid.UUID, error) {
	var rejected []uuid.UUID
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()

		_, err := tx.ExecContext(ctx, `
			UPDATE job_applications SET status = 'selected'
			WHERE job_id = $1 AND freelancer_id = $2 AND status = 'pending'
		`, jobID, selectedFreelancerID)
		if err != nil {
			return apperror.Database(err, "не удалось выбрать исполнителя")
		}

		err = tx.SelectContext(ctx, &rejected, `
			UPDATE job_applications SET status = 'rejected'
			WHERE job_id = $1 AND freelancer_id <> $2 AND status = 'pending'
			RETURNING freelancer_id
		`, jobID, selectedFreelancerID)
		if err != nil {
			return apperror.Database(err, "не удалось отклонить отклики")
		}

		if len(rejected) > 0 {
			inserter := common.NewBatchInserter(tx,
				"INSERT INTO honey_transactions (id, user_id, type, amount, job_id, description, created_at)", 7, 100)
			for _, freelancerID := range rejected {
				refund := entity.NewHoneyTransaction(freelancerID, entity.HoneyTransactionRefund, refundDrops, "Возврат за отклонённый отклик")
				if err := inserter.Add(ctx, refund.ID, refund.UserID, string(refund.Type), refund.Amount, jobID, refund.Description, now); err != nil {
					return apperror.Database(err, "не удалось записать возврат honey drops")
				}
				if err := addToBalance(ctx, tx, freelancerID, refundDrops, now); err != nil {
					return err
				}
			}
			if err := inserter.Flush(ctx); err != nil {
				return apperror.Database(err, "не удалось записать возврат honey drops")
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'in_progress', updated_at = $2
			WHERE id = $1 AND status = 'open'
		`, jobID, now)
		if err != nil {
			return apperror.Database(err, "не удалось обновить задание")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// insertHoneyTransaction с skipDuplicate=true молча пропускает повтор PaymentReference.
func insertHoneyTransaction(ctx context.Context, db sqlx.ExecerContext, t *entity.HoneyTransaction, skipDuplicate bool) (bool, error) {
	query := `
		INSERT INTO honey_transactions (id, user_id, type, amount, job_id, payment_reference, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if skipDuplicate {
		query += ` ON CONFLICT (payment_reference) DO NOTHING`
	}

	result, err := db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		string(t.Type),
		t.Amount,
		t.JobID,
		t.PaymentReference,
		t.Description,
		t.CreatedAt,
	)
	if err != nil {
		return false, apperror.Database(err, "не удалось записать операцию honey drops")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Database(err, "не удалось проверить результат вставки")
	}
	return rows == 1, nil
}

func addToBalance(ctx context.Context, db sqlx.ExecerContext, userID uuid.UUID, amount int, at time.Time) error {
	query := `
		INSERT INTO honey_balances (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = honey_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`
	if _, err := db.ExecContext(ctx, query, userID, amount, at); err != nil {
		return apperror.Database(err, "не удалось обновить баланс honey drops")
	}
	return nil
}
