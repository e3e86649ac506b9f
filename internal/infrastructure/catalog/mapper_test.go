package catalog

import (
	"testing"

	"github.com/productpicker/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePage(t *testing.T) {
	t.Run("keeps catalog order", func(t *testing.T) {
		products, err := decodePage([]byte(twoProductsJSON))

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, int64(77), products[0].ID)
		assert.Equal(t, int64(80), products[1].ID)
	})

	t.Run("missing image stays zero", func(t *testing.T) {
		products, err := decodePage([]byte(`[{"id": 3, "title": "Mug", "variants": [], "image": null}]`))

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, domain.Image{}, products[0].Image)
		assert.Empty(t, products[0].Variants)
	})

	t.Run("object body is malformed", func(t *testing.T) {
		_, err := decodePage([]byte(`{"id": 1}`))

		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("numeric price accepted", func(t *testing.T) {
		products, err := decodePage([]byte(`[{"id": 1, "title": "A", "variants": [{"id": 2, "product_id": 1, "title": "B", "price": 12.5}]}]`))

		require.NoError(t, err)
		assert.Equal(t, "12.50", products[0].Variants[0].Price.StringFixed(2))
	})
}

func TestMapToProduct(t *testing.T) {
	rec := &productRecord{
		ID:    10,
		Title: "Chair",
		Variants: []variantRecord{
			{ID: 100, Title: "Oak"},
			{ID: 101, ProductID: 10, Title: "Pine"},
		},
		Image: &imageRecord{ID: 7, ProductID: 10, Src: "https://cdn.example.com/chair.jpg"},
	}

	product := mapToProduct(rec)

	assert.Equal(t, int64(10), product.Variants[0].ProductID)
	assert.Equal(t, int64(10), product.Variants[1].ProductID)
	assert.Equal(t, "https://cdn.example.com/chair.jpg", product.Image.Src)
}
