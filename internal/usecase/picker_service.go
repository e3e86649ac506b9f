package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/productpicker/backend/internal/domain"
)

// PickerServiceConfig holds configuration for the picker service
type PickerServiceConfig struct {
	Paging Paging
	// InitialRows is the number of empty rows the list starts with
	InitialRows int
}

// PickerService owns the row list, each row's search, and one isolated
// session per row whose dialog is open.
type PickerService struct {
	client domain.CatalogClient
	rows   *RowList
	paging Paging
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	searches map[string]*rowSearch
}

// rowSearch is a row's query and accumulated pages. It lives as long as the
// service, so reopening a row's dialog shows what it showed when it closed.
type rowSearch struct {
	acc    *Accumulator
	ctx    context.Context
	cancel context.CancelFunc
}

func (r *rowSearch) close() {
	r.acc.Close()
	r.cancel()
}

// NewPickerService creates a picker service with dependencies
func NewPickerService(client domain.CatalogClient, config PickerServiceConfig, logger *slog.Logger) *PickerService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.InitialRows <= 0 {
		config.InitialRows = 1
	}

	rows := NewRowList()
	for i := 0; i < config.InitialRows; i++ {
		rows.AddRow()
	}

	return &PickerService{
		client:   client,
		rows:     rows,
		paging:   config.Paging,
		logger:   logger,
		sessions: make(map[string]*Session),
		searches: make(map[string]*rowSearch),
	}
}

// Session is the open dialog of one row: the row's search plus the pending selection
type Session struct {
	rowID string
	acc   *Accumulator
	ctx   context.Context

	mu   sync.Mutex
	sel  *Selection
	subs []*Subscription
}

// SessionView is the serializable state of an open dialog
type SessionView struct {
	RowID          string           `json:"rowId"`
	Query          string           `json:"query"`
	Status         FetchStatus      `json:"status"`
	Error          string           `json:"error,omitempty"`
	Products       []domain.Product `json:"products"`
	HasMore        bool             `json:"hasMore"`
	IsFetchingMore bool             `json:"isFetchingMore"`
	LoadMoreLabel  string           `json:"loadMoreLabel"`
	NoResults      bool             `json:"noResults"`
	Message        string           `json:"message,omitempty"`
	Selection      SelectionView    `json:"selection"`
}

// Open starts a dialog session for the row, or returns the one already open.
// The pending selection is seeded from the row's committed selection. The
// first open of a row issues the fetch for the empty query; later opens resume
// the row's previous query and pages. Fetches outlive ctx's cancellation but
// keep its values.
func (s *PickerService) Open(ctx context.Context, rowID string) (*Session, error) {
	row, err := s.rows.Row(rowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[rowID]; ok {
		return sess, nil
	}

	search, ok := s.searches[rowID]
	if !ok {
		searchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		search = &rowSearch{
			acc:    NewAccumulator(s.client, s.paging, s.logger.With(slog.String("row", rowID))),
			ctx:    searchCtx,
			cancel: cancel,
		}
		s.searches[rowID] = search
		search.acc.SetQuery(searchCtx, "")
	}

	sess := &Session{
		rowID: rowID,
		acc:   search.acc,
		ctx:   search.ctx,
		sel:   SelectionFrom(row.Selection),
	}
	s.sessions[rowID] = sess

	s.logger.Debug("session opened", slog.String("row", rowID), slog.String("query", search.acc.Snapshot().Query))
	return sess, nil
}

// Session returns the open session of a row
func (s *PickerService) Session(rowID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[rowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotOpen, rowID)
	}
	return sess, nil
}

// SetQuery forwards a search text change to the row's session
func (s *PickerService) SetQuery(rowID, text string) error {
	sess, err := s.Session(rowID)
	if err != nil {
		return err
	}
	sess.SetQuery(text)
	return nil
}

// FetchNext asks the row's session for its next page
func (s *PickerService) FetchNext(rowID string) error {
	sess, err := s.Session(rowID)
	if err != nil {
		return err
	}
	sess.FetchNext()
	return nil
}

// ChooseProduct checks or unchecks a product in the row's session
func (s *PickerService) ChooseProduct(rowID string, productID int64, checked bool) error {
	sess, err := s.Session(rowID)
	if err != nil {
		return err
	}
	sess.ChooseProduct(productID, checked)
	return nil
}

// ToggleVariant checks or unchecks a variant in the row's session
func (s *PickerService) ToggleVariant(rowID string, variantID int64, checked bool) error {
	sess, err := s.Session(rowID)
	if err != nil {
		return err
	}
	sess.ToggleVariant(variantID, checked)
	return nil
}

// Confirm commits the session's pending selection into its row and closes the session
func (s *PickerService) Confirm(rowID string) (domain.Row, error) {
	sess, err := s.take(rowID)
	if err != nil {
		return domain.Row{}, err
	}
	defer sess.close()

	committed, err := sess.Commit()
	if errors.Is(err, domain.ErrProductNotFound) {
		s.logger.Warn("chosen product not among accumulated pages, committing empty selection",
			slog.String("row", rowID))
	}

	return s.rows.SetCommittedSelection(rowID, committed)
}

// Discard closes the session without touching the row
func (s *PickerService) Discard(rowID string) error {
	sess, err := s.take(rowID)
	if err != nil {
		return err
	}
	sess.close()
	s.logger.Debug("session discarded", slog.String("row", rowID))
	return nil
}

// AddRow appends an empty row
func (s *PickerService) AddRow() domain.Row {
	return s.rows.AddRow()
}

// Reorder applies a full permutation of row ids
func (s *PickerService) Reorder(ids []string) error {
	return s.rows.Reorder(ids)
}

// MoveTo moves one row to index
func (s *PickerService) MoveTo(rowID string, index int) error {
	return s.rows.MoveTo(rowID, index)
}

// SetDiscount validates and stores the row's discount
func (s *PickerService) SetDiscount(rowID string, d domain.Discount) (domain.Row, error) {
	return s.rows.SetDiscount(rowID, &d)
}

// ClearDiscount removes the row's discount
func (s *PickerService) ClearDiscount(rowID string) (domain.Row, error) {
	return s.rows.SetDiscount(rowID, nil)
}

// Row returns one row
func (s *PickerService) Row(rowID string) (domain.Row, error) {
	return s.rows.Row(rowID)
}

// Rows returns all rows in order
func (s *PickerService) Rows() []domain.Row {
	return s.rows.Rows()
}

// Close discards every open session and stops every row's search
func (s *PickerService) Close() {
	s.mu.Lock()
	sessions, searches := s.sessions, s.searches
	s.sessions = make(map[string]*Session)
	s.searches = make(map[string]*rowSearch)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
	for _, search := range searches {
		search.close()
	}
}

func (s *PickerService) take(rowID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[rowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotOpen, rowID)
	}
	delete(s.sessions, rowID)
	return sess, nil
}

// RowID returns the row the session belongs to
func (sess *Session) RowID() string {
	return sess.rowID
}

// SetQuery normalizes text and restarts the search if it changed
func (sess *Session) SetQuery(text string) bool {
	return sess.acc.SetQuery(sess.ctx, NormalizeQuery(text))
}

// FetchNext requests the next page if one is expected and none is in flight
func (sess *Session) FetchNext() bool {
	return sess.acc.FetchNext(sess.ctx)
}

// ChooseProduct resolves the product's variants against the accumulated pages
func (sess *Session) ChooseProduct(productID int64, checked bool) {
	snap := sess.acc.Snapshot()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.sel.ChooseProduct(productID, checked, snap)
}

// ToggleVariant flips one variant of the chosen product. Checking a variant
// that the accumulated pages do not list under the chosen product is ignored.
func (sess *Session) ToggleVariant(variantID int64, checked bool) {
	snap := sess.acc.Snapshot()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if checked {
		productID, ok := sess.sel.ProductID()
		if !ok {
			return
		}
		p, found := snap.FindProduct(productID)
		if !found || !slices.Contains(p.VariantIDs(), variantID) {
			return
		}
	}
	sess.sel.ToggleVariant(variantID, checked)
}

// IsProductChecked reports whether productID is the pending product
func (sess *Session) IsProductChecked(productID int64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.sel.IsProductChecked(productID)
}

// IsVariantChecked reports whether a variant of productID is pending
func (sess *Session) IsVariantChecked(productID, variantID int64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.sel.IsVariantChecked(productID, variantID)
}

// Commit builds the committed selection from the current accumulated pages
func (sess *Session) Commit() (*domain.CommittedSelection, error) {
	snap := sess.acc.Snapshot()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.sel.Commit(snap)
}

// Snapshot returns the accumulator's current state
func (sess *Session) Snapshot() Snapshot {
	return sess.acc.Snapshot()
}

// Subscribe observes accumulator snapshots until the session ends
func (sess *Session) Subscribe() *Subscription {
	sub := sess.acc.Subscribe()
	sess.mu.Lock()
	sess.subs = append(sess.subs, sub)
	sess.mu.Unlock()
	return sub
}

// Settled is closed once no fetch of the row's search is running
func (sess *Session) Settled() <-chan struct{} {
	return sess.acc.Settled()
}

// Wait blocks until all fetches issued so far have settled
func (sess *Session) Wait() {
	sess.acc.Wait()
}

// View returns the serializable state of the dialog
func (sess *Session) View() SessionView {
	snap := sess.acc.Snapshot()
	sess.mu.Lock()
	sel := sess.sel.View()
	sess.mu.Unlock()

	products := snap.Products()
	if products == nil {
		products = []domain.Product{}
	}

	view := SessionView{
		RowID:          sess.rowID,
		Query:          snap.Query,
		Status:         snap.Status,
		Error:          snap.Err,
		Products:       products,
		HasMore:        snap.HasMore,
		IsFetchingMore: snap.IsFetchingMore,
		LoadMoreLabel:  snap.LoadMoreLabel(),
		NoResults:      snap.NoResults(),
		Selection:      sel,
	}
	if view.NoResults {
		view.Message = NoResultsMessage(snap.Query)
	}
	return view
}

// close ends the session's subscriptions; the row's search keeps running
func (sess *Session) close() {
	sess.mu.Lock()
	subs := sess.subs
	sess.subs = nil
	sess.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
