// Package tui is the terminal front end of the product picker.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/productpicker/backend/internal/domain"
	"github.com/productpicker/backend/internal/usecase"
	"github.com/shopspring/decimal"
)

type mode int

const (
	modeRows mode = iota
	modeDialog
	modeDiscount
)

// Model is the row list screen; it hosts the product dialog and the discount editor
type Model struct {
	ctx      context.Context
	picker   *usecase.PickerService
	theme    Theme
	useColor bool
	keys     rowKeys

	rows   []domain.Row
	cursor int
	mode   mode
	status string
	height int

	dialog   dialogModel
	discount discountEditor
}

type discountEditor struct {
	rowID string
	input textinput.Model
	kind  domain.DiscountKind
	keys  discountKeys
}

// NewModel builds the row list screen over picker. useColor enables lipgloss styling.
func NewModel(ctx context.Context, picker *usecase.PickerService, theme Theme, useColor bool) Model {
	return Model{
		ctx:      ctx,
		picker:   picker,
		theme:    theme,
		useColor: useColor,
		keys:     defaultRowKeys(),
		rows:     picker.Rows(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update routes messages to the open dialog, the discount editor, or the row list
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.height = size.Height
		m.dialog.height = size.Height
		return m, nil
	}

	switch m.mode {
	case modeDialog:
		return m.updateDialog(msg)
	case modeDiscount:
		return m.updateDiscount(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.picker.Close()
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.MoveUp):
		m.moveRow(-1)
	case key.Matches(keyMsg, m.keys.MoveDown):
		m.moveRow(1)
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Add):
		m.picker.AddRow()
		m.refresh()
		m.cursor = len(m.rows) - 1
	case key.Matches(keyMsg, m.keys.Open):
		return m.openDialog()
	case key.Matches(keyMsg, m.keys.Discount):
		return m.openDiscount()
	}
	return m, nil
}

func (m Model) openDialog() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	sess, err := m.picker.Open(m.ctx, m.rows[m.cursor].ID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.dialog = newDialog(sess, m.cursor+1, m.theme, m.useColor)
	m.dialog.height = m.height
	m.mode = modeDialog
	m.status = ""
	return m, m.dialog.init()
}

func (m Model) updateDialog(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd     tea.Cmd
		outcome dialogOutcome
	)
	m.dialog, cmd, outcome = m.dialog.update(msg)

	rowID := m.dialog.sess.RowID()
	switch outcome {
	case dialogConfirmed:
		m.dialog.close()
		if _, err := m.picker.Confirm(rowID); err != nil {
			m.status = err.Error()
		}
	case dialogCanceled:
		m.dialog.close()
		if err := m.picker.Discard(rowID); err != nil {
			m.status = err.Error()
		}
	default:
		return m, cmd
	}

	m.mode = modeRows
	m.refresh()
	return m, nil
}

func (m Model) openDiscount() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	row := m.rows[m.cursor]

	ti := textinput.New()
	ti.Placeholder = "1 - 100"
	ti.Prompt = ""
	ti.CharLimit = 8
	ti.Focus()

	kind := domain.DiscountPercentage
	if row.Discount != nil {
		kind = row.Discount.Kind
		ti.SetValue(row.Discount.Value.String())
	}

	m.discount = discountEditor{rowID: row.ID, input: ti, kind: kind, keys: defaultDiscountKeys()}
	m.mode = modeDiscount
	m.status = ""
	return m, textinput.Blink
}

func (m Model) updateDiscount(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.discount.keys.Discard):
			m.mode = modeRows
			return m, nil
		case key.Matches(keyMsg, m.discount.keys.Kind):
			if m.discount.kind == domain.DiscountPercentage {
				m.discount.kind = domain.DiscountFlat
			} else {
				m.discount.kind = domain.DiscountPercentage
			}
			return m, nil
		case key.Matches(keyMsg, m.discount.keys.Apply):
			if err := m.applyDiscount(); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.mode = modeRows
			m.status = ""
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.discount.input, cmd = m.discount.input.Update(msg)
	return m, cmd
}

// applyDiscount stores the edited discount; an empty value clears it
func (m Model) applyDiscount() error {
	raw := strings.TrimSpace(m.discount.input.Value())
	if raw == "" {
		_, err := m.picker.ClearDiscount(m.discount.rowID)
		return err
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidDiscount, raw)
	}
	_, err = m.picker.SetDiscount(m.discount.rowID, domain.Discount{Kind: m.discount.kind, Value: value})
	return err
}

func (m *Model) moveRow(delta int) {
	target := m.cursor + delta
	if target < 0 || target >= len(m.rows) {
		return
	}
	if err := m.picker.MoveTo(m.rows[m.cursor].ID, target); err != nil {
		m.status = err.Error()
		return
	}
	m.cursor = target
	m.refresh()
}

func (m *Model) refresh() {
	m.rows = m.picker.Rows()
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

// View renders the dialog while one is open, otherwise the row list
func (m Model) View() string {
	if m.mode == modeDialog {
		return m.dialog.view()
	}

	var b strings.Builder
	b.WriteString(paint(m.theme.Header, m.useColor, "Add Products"))
	b.WriteString("\n\n")
	b.WriteString(paint(m.theme.SectionTitle, m.useColor, fmt.Sprintf("     %-*s %s", titleWidth, "Product", "Discount")))
	b.WriteString("\n")

	for i, row := range m.rows {
		b.WriteString(m.renderRow(i, row))
	}

	if m.mode == modeDiscount {
		b.WriteString("\n")
		kind := "%"
		if m.discount.kind == domain.DiscountFlat {
			kind = "flat"
		}
		b.WriteString(fmt.Sprintf("Discount for row %d (%s): %s\n", m.cursor+1, kind, m.discount.input.View()))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(paint(m.theme.Error, m.useColor, m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeDiscount {
		b.WriteString(paint(m.theme.Muted, m.useColor, helpLine(m.discount.keys.Kind, m.discount.keys.Apply, m.discount.keys.Discard)))
	} else {
		b.WriteString(paint(m.theme.Muted, m.useColor, helpLine(m.keys.Add, m.keys.Open, m.keys.MoveUp, m.keys.MoveDown, m.keys.Discount, m.keys.Quit)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRow(i int, row domain.Row) string {
	prefix := "  "
	if i == m.cursor {
		prefix = paint(m.theme.Cursor, m.useColor, "> ")
	}

	label := row.TriggerLabel()
	if row.Selection == nil {
		label = paint(m.theme.Muted, m.useColor, label)
	}
	label = ansi.Truncate(label, titleWidth, "…")
	pad := max(0, titleWidth-ansi.StringWidth(label))

	discount := "-"
	if row.Discount != nil {
		discount = row.Discount.Label()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%d. %s%s %s\n", prefix, row.Order+1, label, strings.Repeat(" ", pad), discount)
	if row.Selection != nil {
		titles := make([]string, len(row.Selection.Variants))
		for j, v := range row.Selection.Variants {
			titles[j] = v.Title
		}
		b.WriteString(paint(m.theme.Muted, m.useColor, "       "+strings.Join(titles, " · ")))
		b.WriteString("\n")
	}
	return b.String()
}
