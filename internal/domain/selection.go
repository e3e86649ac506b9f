package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CommittedSelection is the snapshot stored on a row when its dialog is confirmed.
// It is decoupled from live search results once taken.
type CommittedSelection struct {
	ProductID int64     `json:"productId"`
	Title     string    `json:"title"`
	Variants  []Variant `json:"variants"`
	Image     Image     `json:"image"`
}

// Clone returns a deep copy of s, or nil for a nil selection
func (s *CommittedSelection) Clone() *CommittedSelection {
	if s == nil {
		return nil
	}
	out := *s
	out.Variants = append([]Variant(nil), s.Variants...)
	return &out
}

// VariantIDs returns the ids of the committed variants
func (s *CommittedSelection) VariantIDs() []int64 {
	if s == nil {
		return nil
	}
	ids := make([]int64, 0, len(s.Variants))
	for _, v := range s.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// DiscountKind distinguishes percentage discounts from flat amounts
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFlat       DiscountKind = "flat"
)

var (
	minDiscount = decimal.NewFromInt(1)
	maxDiscount = decimal.NewFromInt(100)
)

// Discount is the optional per-row discount annotation
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Validate checks the kind and that the value lies in [1, 100]
func (d Discount) Validate() error {
	switch d.Kind {
	case DiscountPercentage, DiscountFlat:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDiscount, d.Kind)
	}
	if d.Value.LessThan(minDiscount) || d.Value.GreaterThan(maxDiscount) {
		return fmt.Errorf("%w: value %s outside 1 - 100", ErrInvalidDiscount, d.Value.String())
	}
	return nil
}

// Label renders the discount the way the row shows it, e.g. "10% off" or "5 flat off"
func (d Discount) Label() string {
	if d.Kind == DiscountFlat {
		return d.Value.String() + " flat off"
	}
	return d.Value.String() + "% off"
}

// Row is one orderable product-selection unit. ID is the identity; Order is a
// derived view of its position and is recomputed on every reorder.
type Row struct {
	ID        string              `json:"id"`
	Order     int                 `json:"order"`
	Selection *CommittedSelection `json:"selection"`
	Discount  *Discount           `json:"discount,omitempty"`
}

// TriggerLabel is the text shown on the row's dialog trigger
func (r Row) TriggerLabel() string {
	if r.Selection != nil {
		return r.Selection.Title
	}
	return "Select Product"
}
