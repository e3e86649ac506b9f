package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/productpicker/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// productRecord is the wire shape of one search result
type productRecord struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Variants []variantRecord `json:"variants"`
	Image    *imageRecord    `json:"image"`
}

type variantRecord struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
}

type imageRecord struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Src       string `json:"src"`
}

// decodePage parses a search response body. A JSON null body and null entries
// inside the array both mean "no page data" and never become products.
func decodePage(body []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var records []*productRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstream, err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		products = append(products, mapToProduct(rec))
	}
	return products, nil
}

// mapToProduct converts a wire record into the domain model. Variants missing
// their product id inherit the parent's.
func mapToProduct(rec *productRecord) domain.Product {
	product := domain.Product{
		ID:       rec.ID,
		Title:    rec.Title,
		Variants: make([]domain.Variant, 0, len(rec.Variants)),
	}

	for _, v := range rec.Variants {
		productID := v.ProductID
		if productID == 0 {
			productID = rec.ID
		}
		product.Variants = append(product.Variants, domain.Variant{
			ID:        v.ID,
			ProductID: productID,
			Title:     v.Title,
			Price:     v.Price,
		})
	}

	if rec.Image != nil {
		product.Image = domain.Image{
			ID:        rec.Image.ID,
			ProductID: rec.Image.ProductID,
			Src:       rec.Image.Src,
		}
	}

	return product
}
