package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/lib/pq"
)

const obligationColumns = `id, user_id, title, total, monthly, rate, due_day,
		start_date, next_payment, close_date, status, currency`

type rowScanner interface {
	Scan(dest ...any) error
}

func optionalDate(nt sql.NullTime) *date.Date {
	if !nt.Valid {
		return nil
	}
	return date.FromTime(nt.Time).Ptr()
}

func scanObligation(row rowScanner) (models.Obligation, error) {
	var (
		o                     models.Obligation
		start, next, closedOn sql.NullTime
		status                string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Title, &o.Total, &o.Monthly, &o.Rate, &o.DueDay,
		&start, &next, &closedOn, &status, &o.Currency)
	if err != nil {
		return o, err
	}
	o.StartDate, o.NextPayment, o.CloseDate = optionalDate(start), optionalDate(next), optionalDate(closedOn)
	o.Status = models.Status(status)
	o.Payments = []models.Payment{}
	return o, nil
}

// ListObligations returns the obligations of one user with their schedules, ordered by id.
func (r *Repository) ListObligations(ctx context.Context, userID int64) ([]models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM bank.obligations WHERE user_id = $1 ORDER BY id`
	return r.listObligations(ctx, query, userID)
}

// ListAllObligations returns every obligation of every user with their schedules.
func (r *Repository) ListAllObligations(ctx context.Context) ([]models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM bank.obligations ORDER BY id`
	return r.listObligations(ctx, query)
}

func (r *Repository) listObligations(ctx context.Context, query string, args ...any) ([]models.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	obligations := []models.Obligation{}
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	if err := r.loadPayments(ctx, obligations); err != nil {
		return nil, err
	}
	return obligations, nil
}

// loadPayments fetches the schedules of all given obligations in one query.
func (r *Repository) loadPayments(ctx context.Context, obligations []models.Obligation) error {
	if len(obligations) == 0 {
		return nil
	}
	ids := make([]int64, len(obligations))
	byID := make(map[int64]int, len(obligations))
	for i, o := range obligations {
		ids[i] = o.ID
		byID[o.ID] = i
	}

	query := `
		SELECT obligation_id, n, ok, due_date, amount, note
		FROM bank.obligation_payments
		WHERE obligation_id = ANY($1)
		ORDER BY obligation_id, position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			obligationID int64
			p            models.Payment
			due          sql.NullTime
		)
		if err := rows.Scan(&obligationID, &p.N, &p.OK, &due, &p.Amount, &p.Note); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Date = optionalDate(due)
		i := byID[obligationID]
		obligations[i].Payments = append(obligations[i].Payments, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	return nil
}

// GetObligation returns one obligation owned by userID.
func (r *Repository) GetObligation(ctx context.Context, userID, id int64) (*models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM bank.obligations WHERE id = $1 AND user_id = $2`
	o, err := scanObligation(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	list := []models.Obligation{o}
	if err := r.loadPayments(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateObligation inserts the obligation and its initial schedule and sets its id.
func (r *Repository) CreateObligation(ctx context.Context, o *models.Obligation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bank.obligations (user_id, title, total, monthly, rate, due_day,
			start_date, next_payment, close_date, status, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id`
	err = tx.QueryRowContext(ctx, query, o.UserID, o.Title, o.Total, o.Monthly, o.Rate, o.DueDay,
		o.StartDate, o.NextPayment, o.CloseDate, string(o.Status), o.Currency).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to create obligation: %w", err)
	}
	if err := insertPayments(ctx, tx, o.ID, o.Payments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit obligation: %w", err)
	}
	return nil
}

// ReplaceObligation overwrites the stored obligation, schedule included, in one transaction.
func (r *Repository) ReplaceObligation(ctx context.Context, o *models.Obligation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bank.obligations
		SET title = $3, total = $4, monthly = $5, rate = $6, due_day = $7,
			start_date = $8, next_payment = $9, close_date = $10, status = $11, currency = $12,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`
	res, err := tx.ExecContext(ctx, query, o.ID, o.UserID, o.Title, o.Total, o.Monthly, o.Rate, o.DueDay,
		o.StartDate, o.NextPayment, o.CloseDate, string(o.Status), o.Currency)
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update obligation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bank.obligation_payments WHERE obligation_id = $1`, o.ID); err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}
	if err := insertPayments(ctx, tx, o.ID, o.Payments); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit obligation: %w", err)
	}
	return nil
}

func insertPayments(ctx context.Context, tx *sql.Tx, obligationID int64, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bank.obligation_payments (obligation_id, position, n, ok, due_date, amount, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("failed to prepare payment insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range payments {
		if _, err := stmt.ExecContext(ctx, obligationID, i, p.N, p.OK, p.Date, p.Amount, p.Note); err != nil {
			return fmt.Errorf("failed to insert payment %d: %w", p.N, err)
		}
	}
	return nil
}

// DeleteObligation removes an obligation; its schedule goes with it.
func (r *Repository) DeleteObligation(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bank.obligations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
