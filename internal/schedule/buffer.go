package schedule

import (
	"context"
	"errors"
	"sync"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Store is the part of the persistence boundary the edit buffer saves through.
type Store interface {
	ReplaceObligation(ctx context.Context, o *models.Obligation) error
}

// PaymentPatch holds the fields to change on one buffered row. Nil fields are left alone.
type PaymentPatch struct {
	OK        *bool
	Date      *date.Date
	ClearDate bool
	Amount    *decimal.Decimal
	Note      *string
}

func (p PaymentPatch) apply(row *models.Payment) {
	if p.OK != nil {
		row.OK = *p.OK
	}
	switch {
	case p.ClearDate:
		row.Date = nil
	case p.Date != nil:
		row.Date = p.Date.Ptr()
	}
	if p.Amount != nil {
		row.Amount = *p.Amount
	}
	if p.Note != nil {
		row.Note = *p.Note
	}
}

type draft struct {
	base     models.Obligation
	payments []models.Payment
	version  uint64
}

// EditBuffer holds unsaved working copies of schedules, keyed by obligation id.
// Each entry is independent; nothing reaches storage until Save.
type EditBuffer struct {
	mu      sync.Mutex
	entries map[int64]*draft
}

// NewEditBuffer returns an empty buffer.
func NewEditBuffer() *EditBuffer {
	return &EditBuffer{entries: make(map[int64]*draft)}
}

// Start opens a working copy of the obligation schedule, replacing any previous one.
func (b *EditBuffer) Start(o models.Obligation) []models.Payment {
	base := o.Clone()
	d := &draft{base: base, payments: models.ClonePayments(base.Payments)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.entries[o.ID]; ok {
		d.version = prev.version + 1
	}
	b.entries[o.ID] = d
	return models.ClonePayments(d.payments)
}

// Editing reports whether a working copy exists for id.
func (b *EditBuffer) Editing(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[id]
	return ok
}

// Rebase replaces the terms a working copy was started from, keeping its schedule.
// It is a no-op when there is no working copy of o.
func (b *EditBuffer) Rebase(o models.Obligation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.entries[o.ID]
	if !ok {
		return
	}
	d.base = o.Clone()
	d.version++
}

// Cancel discards the working copy. It reports whether there was one.
func (b *EditBuffer) Cancel(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[id]
	delete(b.entries, id)
	return ok
}

func (b *EditBuffer) get(id int64) (*draft, error) {
	d, ok := b.entries[id]
	if !ok {
		return nil, NotFoundf("edit session for obligation %d", id)
	}
	return d, nil
}

// Obligation returns the obligation as it would be saved: stored terms with the working schedule.
func (b *EditBuffer) Obligation(id int64) (models.Obligation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return models.Obligation{}, err
	}
	o := d.base.Clone()
	o.Payments = models.ClonePayments(d.payments)
	return o, nil
}

// Payments returns a copy of the working schedule.
func (b *EditBuffer) Payments(id int64) ([]models.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return nil, err
	}
	return models.ClonePayments(d.payments), nil
}

// Append adds an unpaid, undated row numbered after the highest existing one,
// priced at the monthly installment.
func (b *EditBuffer) Append(id int64) (models.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return models.Payment{}, err
	}
	row := models.Payment{N: models.MaxN(d.payments) + 1, Amount: d.base.Monthly}
	d.payments = append(d.payments, row)
	d.version++
	return row, nil
}

// Remove deletes the row with sequence number n.
func (b *EditBuffer) Remove(id int64, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return err
	}
	i := models.IndexOf(d.payments, n)
	if i < 0 {
		return NotFoundf("payment %d of obligation %d", n, id)
	}
	d.payments = append(d.payments[:i:i], d.payments[i+1:]...)
	d.version++
	return nil
}

// Update changes fields of the row with sequence number n and returns the updated row.
func (b *EditBuffer) Update(id int64, n int, patch PaymentPatch) (models.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return models.Payment{}, err
	}
	i := models.IndexOf(d.payments, n)
	if i < 0 {
		return models.Payment{}, NotFoundf("payment %d of obligation %d", n, id)
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return models.Payment{}, Validationf("amount must not be negative")
	}
	patch.apply(&d.payments[i])
	d.version++
	return d.payments[i].Clone(), nil
}

// AutoFill runs AutoFill over the working copy. On error the copy is unchanged.
func (b *EditBuffer) AutoFill(id int64) ([]models.Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.get(id)
	if err != nil {
		return nil, err
	}
	filled, err := AutoFill(d.base, d.payments)
	if err != nil {
		return nil, err
	}
	d.payments = filled
	d.version++
	return models.ClonePayments(filled), nil
}

// Save replaces the stored schedule with the working copy in one call and then drops the entry.
// When the store fails the entry is kept as it was, so the save can be retried.
func (b *EditBuffer) Save(ctx context.Context, id int64, store Store) (models.Obligation, error) {
	b.mu.Lock()
	d, err := b.get(id)
	if err != nil {
		b.mu.Unlock()
		return models.Obligation{}, err
	}
	o := d.base.Clone()
	o.Payments = models.ClonePayments(d.payments)
	version := d.version
	b.mu.Unlock()

	if err := store.ReplaceObligation(ctx, &o); err != nil {
		var nf *NotFoundError
		var ve *ValidationError
		if errors.As(err, &nf) || errors.As(err, &ve) {
			return models.Obligation{}, err
		}
		return models.Obligation{}, &TransientIOError{Op: "save schedule", Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// edits made while the request was in flight stay buffered
	if cur, ok := b.entries[id]; ok && cur.version == version {
		delete(b.entries, id)
	}
	return o, nil
}
