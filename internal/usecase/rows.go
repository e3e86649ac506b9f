package usecase

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/productpicker/backend/internal/domain"
)

// RowList is the ordered collection of picker rows. A row's identity is its id;
// its Order always equals its index, so orders stay dense over 0..n-1.
type RowList struct {
	mu    sync.RWMutex
	rows  []*domain.Row
	newID func() string
}

// NewRowList creates an empty list that mints uuid row ids
func NewRowList() *RowList {
	return &RowList{newID: uuid.NewString}
}

// AddRow appends an empty row with a fresh id and order = current length
func (l *RowList) AddRow() domain.Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := &domain.Row{ID: l.newID(), Order: len(l.rows)}
	l.rows = append(l.rows, row)
	return cloneRow(row)
}

// Reorder rearranges rows to match ids, which must be a permutation of the
// current row ids. Selections and discounts travel with their rows.
func (l *RowList) Reorder(ids []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(ids) != len(l.rows) {
		return fmt.Errorf("%w: got %d ids for %d rows", domain.ErrInvalidOrder, len(ids), len(l.rows))
	}

	byID := make(map[string]*domain.Row, len(l.rows))
	for _, r := range l.rows {
		byID[r.ID] = r
	}

	reordered := make([]*domain.Row, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated id %q", domain.ErrInvalidOrder, id)
		}
		delete(byID, id)
		reordered = append(reordered, r)
	}

	l.rows = reordered
	l.renumber()
	return nil
}

// MoveTo moves a single row to index, shifting the rows in between
func (l *RowList) MoveTo(id string, index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.indexOf(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRowNotFound, id)
	}
	if index < 0 || index >= len(l.rows) {
		return fmt.Errorf("%w: index %d out of range", domain.ErrInvalidOrder, index)
	}

	row := l.rows[from]
	l.rows = append(l.rows[:from], l.rows[from+1:]...)
	l.rows = append(l.rows[:index], append([]*domain.Row{row}, l.rows[index:]...)...)
	l.renumber()
	return nil
}

// SetCommittedSelection replaces the selection of the row with id; nil clears it
func (l *RowList) SetCommittedSelection(id string, sel *domain.CommittedSelection) (domain.Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Row{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, id)
	}
	l.rows[i].Selection = sel.Clone()
	return cloneRow(l.rows[i]), nil
}

// SetDiscount validates and stores a discount on the row; nil removes it
func (l *RowList) SetDiscount(id string, d *domain.Discount) (domain.Row, error) {
	if d != nil {
		if err := d.Validate(); err != nil {
			return domain.Row{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Row{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, id)
	}
	if d == nil {
		l.rows[i].Discount = nil
	} else {
		discount := *d
		l.rows[i].Discount = &discount
	}
	return cloneRow(l.rows[i]), nil
}

// Row returns a copy of the row with id
func (l *RowList) Row(id string) (domain.Row, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Row{}, fmt.Errorf("%w: %s", domain.ErrRowNotFound, id)
	}
	return cloneRow(l.rows[i]), nil
}

// Rows returns copies of all rows in order
func (l *RowList) Rows() []domain.Row {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Row, len(l.rows))
	for i, r := range l.rows {
		out[i] = cloneRow(r)
	}
	return out
}

// Len returns the number of rows
func (l *RowList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}

func (l *RowList) indexOf(id string) int {
	for i, r := range l.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (l *RowList) renumber() {
	for i, r := range l.rows {
		r.Order = i
	}
}

func cloneRow(r *domain.Row) domain.Row {
	out := *r
	out.Selection = r.Selection.Clone()
	if r.Discount != nil {
		d := *r.Discount
		out.Discount = &d
	}
	return out
}
