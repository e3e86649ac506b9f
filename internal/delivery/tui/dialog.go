package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/productpicker/backend/internal/domain"
	"github.com/productpicker/backend/internal/usecase"
)

const titleWidth = 40

type (
	snapshotMsg struct {
		sub  *usecase.Subscription
		snap usecase.Snapshot
	}
	subscriptionClosedMsg struct {
		sub *usecase.Subscription
	}
)

// waitForSnapshot blocks on the next coalesced snapshot of sub
func waitForSnapshot(sub *usecase.Subscription) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub.C()
		if !ok {
			return subscriptionClosedMsg{sub: sub}
		}
		return snapshotMsg{sub: sub, snap: snap}
	}
}

type dialogOutcome int

const (
	dialogOpen dialogOutcome = iota
	dialogConfirmed
	dialogCanceled
)

// dialogItem is one selectable line: a product, or one of its variants
type dialogItem struct {
	product domain.Product
	variant *domain.Variant
}

type dialogModel struct {
	sess   *usecase.Session
	sub    *usecase.Subscription
	rowNum int

	input     textinput.Model
	spinner   spinner.Model
	snap      usecase.Snapshot
	items     []dialogItem
	cursor    int
	listFocus bool
	height    int

	keys     dialogKeys
	theme    Theme
	useColor bool
}

func newDialog(sess *usecase.Session, rowNum int, theme Theme, useColor bool) dialogModel {
	ti := textinput.New()
	ti.Placeholder = "Search product"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.SetValue(sess.Snapshot().Query)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if useColor {
		sp.Style = theme.Muted
	}

	d := dialogModel{
		sess:     sess,
		sub:      sess.Subscribe(),
		rowNum:   rowNum,
		input:    ti,
		spinner:  sp,
		keys:     defaultDialogKeys(),
		theme:    theme,
		useColor: useColor,
	}
	d.setSnapshot(sess.Snapshot())
	return d
}

func (d dialogModel) init() tea.Cmd {
	return tea.Batch(waitForSnapshot(d.sub), textinput.Blink, d.spinner.Tick)
}

// close stops snapshot delivery; the pending waitForSnapshot returns subscriptionClosedMsg
func (d dialogModel) close() {
	d.sub.Close()
}

// setSnapshot rebuilds the list. Nothing is listed while the search is in
// error; the cursor is kept for when a retry succeeds.
func (d *dialogModel) setSnapshot(snap usecase.Snapshot) {
	d.snap = snap
	d.items = nil
	if snap.Status == usecase.StatusError {
		return
	}
	for _, p := range snap.Products() {
		d.items = append(d.items, dialogItem{product: p})
		for i := range p.Variants {
			d.items = append(d.items, dialogItem{product: p, variant: &p.Variants[i]})
		}
	}
	if d.cursor >= len(d.items) {
		d.cursor = max(0, len(d.items)-1)
	}
}

func (d dialogModel) update(msg tea.Msg) (dialogModel, tea.Cmd, dialogOutcome) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.sub != d.sub {
			return d, nil, dialogOpen
		}
		d.setSnapshot(msg.snap)
		return d, waitForSnapshot(d.sub), dialogOpen

	case subscriptionClosedMsg:
		return d, nil, dialogOpen

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd, dialogOpen

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, d.keys.Cancel):
			return d, nil, dialogCanceled
		case key.Matches(msg, d.keys.Confirm):
			return d, nil, dialogConfirmed
		case key.Matches(msg, d.keys.LoadMore):
			d.sess.FetchNext()
			return d, nil, dialogOpen
		case key.Matches(msg, d.keys.Focus):
			d.setListFocus(!d.listFocus)
			return d, nil, dialogOpen
		case key.Matches(msg, d.keys.Down):
			d.moveDown()
			return d, nil, dialogOpen
		case key.Matches(msg, d.keys.Up):
			d.moveUp()
			return d, nil, dialogOpen
		case d.listFocus && key.Matches(msg, d.keys.Toggle):
			d.toggle()
			return d, nil, dialogOpen
		case d.listFocus && msg.Type == tea.KeyRunes:
			// typing while in the list goes back to the search box
			d.setListFocus(false)
		}
	}

	if d.listFocus {
		return d, nil, dialogOpen
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	d.sess.SetQuery(d.input.Value())
	return d, cmd, dialogOpen
}

func (d *dialogModel) setListFocus(on bool) {
	d.listFocus = on
	if on {
		d.input.Blur()
	} else {
		d.input.Focus()
	}
}

// moveDown advances the cursor; reaching the last line asks for the next page
func (d *dialogModel) moveDown() {
	if len(d.items) == 0 {
		return
	}
	if !d.listFocus {
		d.setListFocus(true)
	} else if d.cursor < len(d.items)-1 {
		d.cursor++
	}
	if d.cursor == len(d.items)-1 {
		d.sess.FetchNext()
	}
}

func (d *dialogModel) moveUp() {
	if !d.listFocus {
		return
	}
	if d.cursor > 0 {
		d.cursor--
		return
	}
	d.setListFocus(false)
}

func (d *dialogModel) toggle() {
	if d.cursor >= len(d.items) {
		return
	}
	item := d.items[d.cursor]
	if item.variant == nil {
		d.sess.ChooseProduct(item.product.ID, !d.sess.IsProductChecked(item.product.ID))
		return
	}
	d.sess.ToggleVariant(item.variant.ID, !d.sess.IsVariantChecked(item.product.ID, item.variant.ID))
}

// visibleRange returns the window of items to draw around the cursor
func (d dialogModel) visibleRange() (int, int) {
	limit := len(d.items)
	if d.height > 0 {
		limit = min(limit, max(3, d.height-10))
	}
	start := 0
	if d.cursor >= limit {
		start = d.cursor - limit + 1
	}
	return start, min(len(d.items), start+limit)
}

func (d dialogModel) view() string {
	var b strings.Builder

	b.WriteString(paint(d.theme.Header, d.useColor, fmt.Sprintf("Select Products (row %d)", d.rowNum)))
	b.WriteString("\n\n")
	b.WriteString(paint(d.theme.SectionTitle, d.useColor, "Search: "))
	b.WriteString(d.input.View())
	b.WriteString("\n\n")

	start, end := d.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(d.renderItem(i))
		b.WriteString("\n")
	}

	switch {
	case d.snap.Status == usecase.StatusPending:
		b.WriteString(d.spinner.View() + " Loading products...\n")
	case d.snap.Status == usecase.StatusError:
		b.WriteString(paint(d.theme.Error, d.useColor, "Error: "+d.snap.Err) + "\n")
	case d.snap.NoResults():
		b.WriteString(paint(d.theme.Warn, d.useColor, usecase.NoResultsMessage(d.snap.Query)) + "\n")
	}

	if d.snap.Status != usecase.StatusPending && !d.snap.NoResults() {
		label := d.snap.LoadMoreLabel()
		if d.snap.IsFetchingMore {
			label = d.spinner.View() + " " + label
		}
		b.WriteString(paint(d.theme.Muted, d.useColor, label) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(paint(d.theme.Muted, d.useColor, helpLine(d.keys.Focus, d.keys.Toggle, d.keys.LoadMore, d.keys.Confirm, d.keys.Cancel)))
	b.WriteString("\n")
	return b.String()
}

func (d dialogModel) renderItem(i int) string {
	item := d.items[i]

	prefix := "  "
	if d.listFocus && i == d.cursor {
		prefix = paint(d.theme.Cursor, d.useColor, "> ")
	}

	if item.variant == nil {
		checked := d.sess.IsProductChecked(item.product.ID)
		return prefix + d.checkbox(checked) + " " + ansi.Truncate(item.product.Title, titleWidth, "…")
	}

	checked := d.sess.IsVariantChecked(item.product.ID, item.variant.ID)
	title := ansi.Truncate(item.variant.Title, titleWidth-4, "…")
	return fmt.Sprintf("%s    %s %-*s $%s", prefix, d.checkbox(checked), titleWidth-4, title, item.variant.Price.StringFixed(2))
}

func (d dialogModel) checkbox(checked bool) string {
	if checked {
		return paint(d.theme.Checked, d.useColor, "[x]")
	}
	return "[ ]"
}
