package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/productpicker/backend/internal/domain"
)

// FetchStatus is the coarse state of a search session
type FetchStatus string

const (
	StatusPending FetchStatus = "pending"
	StatusSuccess FetchStatus = "success"
	StatusError   FetchStatus = "error"
)

// Paging holds the page-count policy for a search session
type Paging struct {
	PageSize   int
	MaxRecords int
}

// DefaultPaging is 10 records per page capped at 1000 potential records
func DefaultPaging() Paging {
	return Paging{PageSize: 10, MaxRecords: 1000}
}

// hasMore reports whether another page may exist after pagesFetched pages.
// This is a heuristic cap, not a signal from the catalog.
func (p Paging) hasMore(pagesFetched int) bool {
	return pagesFetched*p.PageSize < p.MaxRecords
}

// nextPageParam returns the page parameter for the request following pagesFetched pages.
// The first request asks for page 0; the catalog serves page 0 and page 1 alike,
// so follow-ups continue at pagesFetched+1.
func nextPageParam(pagesFetched int) int {
	if pagesFetched == 0 {
		return 0
	}
	return pagesFetched + 1
}

// Snapshot is the full accumulated history for the current query.
// Pages are shared between snapshots and must not be modified.
type Snapshot struct {
	Query          string             `json:"query"`
	Pages          [][]domain.Product `json:"pages"`
	HasMore        bool               `json:"hasMore"`
	IsFetchingMore bool               `json:"isFetchingMore"`
	Status         FetchStatus        `json:"status"`
	Err            string             `json:"error,omitempty"`
}

// Products flattens the pages in arrival order
func (s Snapshot) Products() []domain.Product {
	var out []domain.Product
	for _, page := range s.Pages {
		out = append(out, page...)
	}
	return out
}

// FindProduct looks a product up among the accumulated pages and returns a
// copy the caller may keep
func (s Snapshot) FindProduct(id int64) (domain.Product, bool) {
	for _, page := range s.Pages {
		for _, p := range page {
			if p.ID == id {
				return p.Clone(), true
			}
		}
	}
	return domain.Product{}, false
}

// NoResults reports a successful session in which every page came back empty
func (s Snapshot) NoResults() bool {
	return s.Status == StatusSuccess && len(s.Pages) > 0 && allEmpty(s.Pages)
}

// LoadMoreLabel is the caption of the load-more control
func (s Snapshot) LoadMoreLabel() string {
	switch {
	case s.IsFetchingMore:
		return "Loading more products..."
	case s.HasMore:
		return "Load products"
	default:
		return "No more products to load"
	}
}

func allEmpty(pages [][]domain.Product) bool {
	for _, page := range pages {
		if len(page) > 0 {
			return false
		}
	}
	return true
}

// Accumulator drives incremental loading for one search session. Fetches run
// in the background; a response is applied only if no newer query was set
// since its request was issued.
type Accumulator struct {
	client domain.CatalogClient
	paging Paging
	logger *slog.Logger

	mu         sync.Mutex
	state      Snapshot
	started    bool
	inFlight   bool
	generation uint64
	subs       map[*Subscription]struct{}

	// running counts launched fetches that have not been applied yet;
	// idle is closed whenever it is zero
	running int
	idle    chan struct{}
}

// NewAccumulator creates an accumulator that has not fetched anything yet
func NewAccumulator(client domain.CatalogClient, paging Paging, logger *slog.Logger) *Accumulator {
	if paging.PageSize <= 0 || paging.MaxRecords <= 0 {
		paging = DefaultPaging()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	idle := make(chan struct{})
	close(idle)
	return &Accumulator{
		client: client,
		paging: paging,
		logger: logger,
		state:  Snapshot{Status: StatusPending},
		subs:   make(map[*Subscription]struct{}),
		idle:   idle,
	}
}

// SetQuery starts a fresh session for text, discarding accumulated pages, unless
// text equals the current query. It reports whether a fetch was issued.
func (a *Accumulator) SetQuery(ctx context.Context, text string) bool {
	a.mu.Lock()
	if a.started && text == a.state.Query {
		a.mu.Unlock()
		return false
	}
	a.started = true
	a.generation++
	gen := a.generation
	a.state = Snapshot{Query: text, Status: StatusPending}
	a.inFlight = true
	a.trackLocked()
	a.publishLocked()
	a.mu.Unlock()

	a.launch(ctx, gen, text, 0)
	return true
}

// FetchNext requests the next page. It is a no-op while a fetch is in flight or
// when no more pages are expected, and reports whether a request was issued.
func (a *Accumulator) FetchNext(ctx context.Context) bool {
	a.mu.Lock()
	if !a.state.HasMore || a.inFlight {
		a.mu.Unlock()
		return false
	}
	gen := a.generation
	query := a.state.Query
	page := nextPageParam(len(a.state.Pages))
	a.inFlight = true
	a.state.IsFetchingMore = true
	a.trackLocked()
	a.publishLocked()
	a.mu.Unlock()

	a.launch(ctx, gen, query, page)
	return true
}

// Snapshot returns the current accumulated state
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Settled returns a channel that is closed once no fetch is running. A fetch
// issued before it closes keeps it open.
func (a *Accumulator) Settled() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.idle
}

// Wait blocks until every fetch issued so far has settled
func (a *Accumulator) Wait() {
	<-a.Settled()
}

// Close drops any in-flight response and ends all subscriptions
func (a *Accumulator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.inFlight = false
	for sub := range a.subs {
		delete(a.subs, sub)
		close(sub.ch)
	}
}

// trackLocked registers a fetch about to be launched
func (a *Accumulator) trackLocked() {
	if a.running == 0 {
		a.idle = make(chan struct{})
	}
	a.running++
}

// untrackLocked marks a launched fetch as applied or dropped
func (a *Accumulator) untrackLocked() {
	a.running--
	if a.running == 0 {
		close(a.idle)
	}
}

func (a *Accumulator) launch(ctx context.Context, gen uint64, query string, page int) {
	go func() {
		products, err := a.client.SearchProducts(ctx, query, page)
		a.apply(gen, query, page, products, err)
	}()
}

func (a *Accumulator) apply(gen uint64, query string, page int, products []domain.Product, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.untrackLocked()

	if gen != a.generation {
		a.logger.Debug("dropping stale page", slog.String("query", query), slog.Int("page", page))
		return
	}

	a.inFlight = false
	a.state.IsFetchingMore = false

	if err != nil {
		a.logger.Warn("search fetch failed", slog.String("query", query), slog.Int("page", page), slog.Any("err", err))
		a.state.Status = StatusError
		a.state.Err = err.Error()
		a.publishLocked()
		return
	}

	pages := make([][]domain.Product, len(a.state.Pages), len(a.state.Pages)+1)
	copy(pages, a.state.Pages)
	pages = append(pages, products)

	a.state.Pages = pages
	a.state.Status = StatusSuccess
	a.state.Err = ""
	a.state.HasMore = !allEmpty(pages) && a.paging.hasMore(len(pages))
	a.publishLocked()
}

// Subscription delivers snapshots, coalescing to the most recent one
type Subscription struct {
	ch  chan Snapshot
	acc *Accumulator
}

// Subscribe returns a subscription primed with the current snapshot
func (a *Accumulator) Subscribe() *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	sub := &Subscription{ch: make(chan Snapshot, 1), acc: a}
	sub.ch <- a.state
	a.subs[sub] = struct{}{}
	return sub
}

// C is closed when the subscription or its accumulator is closed
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Close stops delivery
func (s *Subscription) Close() {
	s.acc.mu.Lock()
	defer s.acc.mu.Unlock()
	if _, ok := s.acc.subs[s]; ok {
		delete(s.acc.subs, s)
		close(s.ch)
	}
}

// publishLocked replaces any undelivered snapshot with the current one
func (a *Accumulator) publishLocked() {
	for sub := range a.subs {
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- a.state
	}
}
