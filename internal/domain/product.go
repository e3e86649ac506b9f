package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as returned by the product search endpoint
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
	Image    Image     `json:"image"`
}

// Variant is one purchasable option of a product. Price travels as a decimal string.
type Variant struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
}

// Image is the product's primary image
type Image struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id,omitempty"`
	Src       string `json:"src"`
}

// VariantIDs returns the ids of all variants in catalog order
func (p Product) VariantIDs() []int64 {
	ids := make([]int64, 0, len(p.Variants))
	for _, v := range p.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// Clone returns a copy that shares no slices with p
func (p Product) Clone() Product {
	out := p
	if p.Variants != nil {
		out.Variants = append([]Variant(nil), p.Variants...)
	}
	return out
}
