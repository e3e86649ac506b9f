package usecase

import (
	"slices"

	"github.com/productpicker/backend/internal/domain"
)

// Selection is the pending, uncommitted choice inside an open dialog: at most
// one product and a set of variant ids. It is not safe for concurrent use.
type Selection struct {
	productID  int64
	hasProduct bool
	variantIDs map[int64]struct{}
}

// SelectionView is the serializable form of a Selection
type SelectionView struct {
	ProductID  *int64  `json:"productId"`
	VariantIDs []int64 `json:"variantIds"`
}

// NewSelection returns an empty selection
func NewSelection() *Selection {
	return &Selection{variantIDs: make(map[int64]struct{})}
}

// SelectionFrom seeds a pending selection from a row's committed selection
func SelectionFrom(committed *domain.CommittedSelection) *Selection {
	s := NewSelection()
	if committed == nil {
		return s
	}
	s.productID = committed.ProductID
	s.hasProduct = true
	for _, id := range committed.VariantIDs() {
		s.variantIDs[id] = struct{}{}
	}
	return s
}

// ProductID returns the chosen product, if any
func (s *Selection) ProductID() (int64, bool) {
	return s.productID, s.hasProduct
}

// VariantIDs returns the selected variant ids in ascending order
func (s *Selection) VariantIDs() []int64 {
	ids := make([]int64, 0, len(s.variantIDs))
	for id := range s.variantIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsProductChecked reports whether id is the chosen product
func (s *Selection) IsProductChecked(id int64) bool {
	return s.hasProduct && s.productID == id
}

// IsVariantChecked reports whether a variant renders checked; only variants of
// the chosen product can be.
func (s *Selection) IsVariantChecked(productID, variantID int64) bool {
	if !s.IsProductChecked(productID) {
		return false
	}
	_, ok := s.variantIDs[variantID]
	return ok
}

// ChooseProduct checks or unchecks a product. Checking replaces any previous
// choice and selects all of the product's variants as found in snap; unchecking
// clears the selection entirely.
func (s *Selection) ChooseProduct(productID int64, checked bool, snap Snapshot) {
	clear(s.variantIDs)
	if !checked {
		s.productID, s.hasProduct = 0, false
		return
	}

	s.productID, s.hasProduct = productID, true
	if p, ok := snap.FindProduct(productID); ok {
		for _, id := range p.VariantIDs() {
			s.variantIDs[id] = struct{}{}
		}
	}
}

// ToggleVariant adds or removes a variant id without touching the chosen
// product. Toggles with no product chosen are ignored.
func (s *Selection) ToggleVariant(variantID int64, checked bool) {
	if !s.hasProduct {
		return
	}
	if checked {
		s.variantIDs[variantID] = struct{}{}
		return
	}
	delete(s.variantIDs, variantID)
}

// Commit turns the pending selection into a row snapshot using the product
// record found in snap. No product, or no selected variant of it, commits nil.
// A chosen product missing from snap commits nil with ErrProductNotFound.
func (s *Selection) Commit(snap Snapshot) (*domain.CommittedSelection, error) {
	if !s.hasProduct {
		return nil, nil
	}

	p, ok := snap.FindProduct(s.productID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	var variants []domain.Variant
	for _, v := range p.Variants {
		if _, ok := s.variantIDs[v.ID]; ok {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return nil, nil
	}

	return &domain.CommittedSelection{
		ProductID: p.ID,
		Title:     p.Title,
		Variants:  variants,
		Image:     p.Image,
	}, nil
}

// View returns the serializable form
func (s *Selection) View() SelectionView {
	v := SelectionView{VariantIDs: s.VariantIDs()}
	if s.hasProduct {
		id := s.productID
		v.ProductID = &id
	}
	return v
}
