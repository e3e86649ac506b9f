package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/productpicker/backend/internal/domain"
	"github.com/productpicker/backend/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct{}

func (fakeCatalog) SearchProducts(ctx context.Context, query string, page int) ([]domain.Product, error) {
	price := decimal.RequireFromString("49.99")
	switch {
	case query == "towel" && page == 0:
		return []domain.Product{
			{ID: 1, Title: "Fog Linen Thin Towel", Variants: []domain.Variant{
				{ID: 11, ProductID: 1, Title: "Beige", Price: price},
				{ID: 12, ProductID: 1, Title: "Grey", Price: price},
			}},
		}, nil
	case query == "towel" && page == 2:
		return []domain.Product{
			{ID: 5, Title: "Turkish Bath Towel", Variants: []domain.Variant{{ID: 51, ProductID: 5, Title: "White", Price: price}}},
		}, nil
	case query == "flaky" && page == 0:
		return []domain.Product{{ID: 3, Title: "Brass Desk Lamp", Variants: []domain.Variant{{ID: 31, ProductID: 3, Title: "Brass", Price: price}}}}, nil
	case query == "flaky":
		return nil, domain.ErrNetwork
	case query == "":
		return []domain.Product{{ID: 9, Title: "Orbit Terrarium", Variants: []domain.Variant{{ID: 91, ProductID: 9, Title: "Small", Price: price}}}}, nil
	}
	return nil, nil
}

func newTestModel(t *testing.T) (Model, *usecase.PickerService) {
	t.Helper()
	picker := usecase.NewPickerService(fakeCatalog{}, usecase.PickerServiceConfig{Paging: usecase.DefaultPaging()}, nil)
	t.Cleanup(picker.Close)
	return NewModel(context.Background(), picker, DefaultTheme(), false), picker
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// settle waits for the dialog's fetches and delivers the latest snapshot
func settle(t *testing.T, m Model) Model {
	t.Helper()
	require.Equal(t, modeDialog, m.mode)
	m.dialog.sess.Wait()
	return press(t, m, waitForSnapshot(m.dialog.sub)())
}

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func TestModel_InitialView(t *testing.T) {
	m, _ := newTestModel(t)

	view := plainView(m)

	assert.Contains(t, view, "Add Products")
	assert.Contains(t, view, "> 1. Select Product")
	assert.Contains(t, view, "a: add row")
}

func TestModel_AddAndMoveRows(t *testing.T) {
	m, picker := newTestModel(t)
	first := picker.Rows()[0].ID

	m = press(t, m, runes("a"))
	require.Len(t, m.rows, 2)
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, runes("K"))
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, first, picker.Rows()[1].ID)

	m = press(t, m, runes("K"))
	assert.Equal(t, 0, m.cursor, "moving past the top is ignored")

	m = press(t, m, runes("J"))
	assert.Equal(t, first, picker.Rows()[0].ID)
}

func TestModel_DialogSelectAcrossPages(t *testing.T) {
	m, picker := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m)
	view := plainView(m)
	assert.Contains(t, view, "Select Products (row 1)")
	assert.Contains(t, view, "[ ] Orbit Terrarium")

	m = press(t, m, runes("towel"))
	m = settle(t, m)
	view = plainView(m)
	assert.Contains(t, view, "[ ] Fog Linen Thin Towel")
	assert.Contains(t, view, "$49.99")
	assert.Contains(t, view, "Load products")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	view = plainView(m)
	assert.Contains(t, view, "> [x] Fog Linen Thin Towel")
	assert.Contains(t, view, "[x] Grey")

	// reaching the last line loads the next page
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	m = settle(t, m)
	assert.Contains(t, plainView(m), "[ ] Turkish Bath Towel")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeRows, m.mode)
	row := picker.Rows()[0]
	require.NotNil(t, row.Selection)
	assert.Equal(t, []int64{12}, row.Selection.VariantIDs(), "beige was unchecked")

	view = plainView(m)
	assert.Contains(t, view, "1. Fog Linen Thin Towel")
	assert.Contains(t, view, "Grey")
	assert.NotContains(t, view, "Beige")
}

func TestModel_DialogCancelKeepsRow(t *testing.T) {
	m, picker := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Contains(t, plainView(m), "[x] Orbit Terrarium")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, modeRows, m.mode)
	assert.Nil(t, picker.Rows()[0].Selection)
	_, err := picker.Session(picker.Rows()[0].ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
}

func TestModel_DialogNoResults(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, runes("xyz"))
	m = settle(t, m)

	view := plainView(m)
	assert.Contains(t, view, "No products found with the name xyz")
	assert.NotContains(t, view, "Load products")
}

func TestModel_DialogErrorHidesResults(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("flaky"))
	m = settle(t, m)
	require.Contains(t, plainView(m), "Brass Desk Lamp")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m = settle(t, m)

	view := plainView(m)
	assert.Contains(t, view, "Error: ")
	assert.NotContains(t, view, "Brass Desk Lamp")

	// navigation has nothing to land on while the list is hidden
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, m.dialog.sess.IsProductChecked(3))
}

func TestModel_ReopenKeepsSearch(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("towel"))
	m = settle(t, m)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeRows, m.mode)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m)

	view := plainView(m)
	assert.Contains(t, view, "Search: towel")
	assert.Contains(t, view, "[x] Fog Linen Thin Towel")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, plainView(m), "1. Fog Linen Thin Towel")
}

func TestModel_StaleSubscriptionIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m)
	before := plainView(m)

	m = press(t, m, snapshotMsg{sub: &usecase.Subscription{}, snap: usecase.Snapshot{Status: usecase.StatusError, Err: "stale"}})

	assert.Equal(t, before, plainView(m))
}

func TestModel_Discount(t *testing.T) {
	m, picker := newTestModel(t)

	m = press(t, m, runes("d"), runes("15"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeRows, m.mode)
	assert.Contains(t, plainView(m), "15% off")

	m = press(t, m, runes("d"), tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, runes("5"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, plainView(m), "5 flat off")

	m = press(t, m, runes("d"), runes("00"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeDiscount, m.mode)
	assert.Contains(t, plainView(m), "invalid discount")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeRows, m.mode)
	assert.Equal(t, domain.DiscountFlat, picker.Rows()[0].Discount.Kind)
}

func TestModel_ViewFitsHeight(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 14})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("towel"))
	m = settle(t, m)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	m = settle(t, m)

	lines := strings.Split(strings.TrimRight(plainView(m), "\n"), "\n")
	assert.LessOrEqual(t, len(lines), 14)
}
