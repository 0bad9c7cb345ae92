// Package dashboard runs the live view of one owner's bookmarks.
//
// Each Dashboard owns its list and mutates it on a single goroutine. Store,
// title and AI calls run in the background and hand their results back to
// that goroutine, which is also where pushed changes are merged.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/realtime"
	"github.com/MrSnakeDoc/smartmark/internal/reconcile"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

// ErrClosed is returned by Send once the dashboard has shut down.
var ErrClosed = errors.New("dashboard closed")

// Toast texts.
const (
	TextAdded         = "Bookmark added"
	TextAddFailed     = "Failed to add bookmark. Please try again."
	TextDeleted       = "Bookmark deleted"
	TextDeleteFailed  = "Failed to delete. Refreshing..."
	TextAIFailed      = "AI search failed. Try again."
	TextAINotConfig   = "Gemini API key not configured"
	TextRefreshFailed = "Failed to refresh bookmarks."
)

// TitleFetcher reads a page title; "" means none.
type TitleFetcher interface {
	Fetch(ctx context.Context, url string) string
}

// Searcher matches a query against candidates.
type Searcher interface {
	Search(ctx context.Context, query string, candidates []domain.Candidate) ([]string, error)
}

// Subscriber hands out owner-scoped change subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, owner string) (realtime.Subscription, error)
}

// Deps are the collaborators of a dashboard.
type Deps struct {
	Store  store.Store
	Hub    Subscriber
	Titles TitleFetcher
	AI     Searcher
	Log    logger.Logger
	Now    func() time.Time
}

type Dashboard struct {
	owner string
	deps  Deps
	log   logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	cmds    chan Command
	results chan func()
	updates chan Message
	done    chan struct{}
	workers sync.WaitGroup
	sub     realtime.Subscription

	// Owned by the loop goroutine.
	list      []domain.Bookmark
	query     string
	aiQuery   string
	aiIDs     []string // nil => no AI filter
	adding    bool
	searching bool
	fetching  int
}

// Open subscribes to owner's changes, loads the list and starts the loop.
// The subscription comes first so no change between the two is lost; the
// reducer drops the duplicate if one arrives for a row already loaded.
func Open(ctx context.Context, owner string, deps Deps) (*Dashboard, error) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	sub, err := deps.Hub.Subscribe(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	rows, err := deps.Store.ListByOwner(ctx, owner)
	if err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d := &Dashboard{
		owner:   owner,
		deps:    deps,
		log:     deps.Log.With(logger.String("owner", owner)),
		ctx:     loopCtx,
		cancel:  cancel,
		cmds:    make(chan Command),
		results: make(chan func()),
		updates: make(chan Message, 32),
		done:    make(chan struct{}),
		sub:     sub,
		list:    reconcile.Apply(nil, reconcile.Event{Kind: reconcile.FullRefresh, Rows: rows}),
	}

	// Buffered, so the first snapshot never blocks Open.
	d.updates <- Message{Type: MsgState, State: d.snapshot()}

	go d.loop()
	return d, nil
}

// Updates delivers state snapshots, toasts and title results. It is closed
// after Close.
func (d *Dashboard) Updates() <-chan Message { return d.updates }

// Send queues a command for the loop.
func (d *Dashboard) Send(ctx context.Context, cmd Command) error {
	select {
	case d.cmds <- cmd:
		return nil
	case <-d.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop, releases the subscription and waits for every
// background call to finish. Safe to call more than once.
func (d *Dashboard) Close() error {
	d.cancel()
	<-d.done
	return nil
}

func (d *Dashboard) loop() {
	defer close(d.done)
	defer close(d.updates)
	defer d.workers.Wait()
	defer func() {
		if err := d.sub.Close(); err != nil {
			d.log.Warn("failed to close subscription", logger.Error(err))
		}
	}()

	events := d.sub.Events()
	for {
		select {
		case <-d.ctx.Done():
			return
		case cmd := <-d.cmds:
			d.handle(cmd)
		case apply := <-d.results:
			apply()
		case ev, ok := <-events:
			if !ok {
				d.log.Warn("change subscription ended")
				events = nil
				continue
			}
			d.applyRemote(ev)
		}
	}
}

func (d *Dashboard) handle(cmd Command) {
	switch cmd.Type {
	case CmdAdd:
		d.add(cmd.URL, cmd.Title)
	case CmdDelete:
		d.delete(cmd.ID)
	case CmdSearch:
		d.query = cmd.Query
		d.emitState()
	case CmdAISearch:
		d.aiSearch(cmd.Query)
	case CmdAIClear:
		d.aiIDs = nil
		d.aiQuery = ""
		d.emitState()
	case CmdFetchTitle:
		d.fetchTitle(cmd.URL)
	case CmdRefresh:
		d.refresh()
	default:
		d.emit(Message{Type: MsgError, Error: fmt.Sprintf("unknown command %q", cmd.Type)})
	}
}

func (d *Dashboard) add(url, title string) {
	if d.adding {
		return
	}
	url, title = strings.TrimSpace(url), strings.TrimSpace(title)
	if url == "" || title == "" {
		return
	}

	d.adding = true
	d.emitState()

	d.async(func(ctx context.Context) func() {
		b, err := d.deps.Store.Insert(ctx, d.owner, url, title)
		return func() {
			d.adding = false
			if err != nil {
				d.log.Warn("failed to add bookmark", logger.Error(err))
				d.toast(ToastError, TextAddFailed)
				d.emitState()
				return
			}
			d.apply(reconcile.Event{Kind: reconcile.LocalInsert, Bookmark: b})
			d.emit(Message{Type: MsgAdded, Bookmark: &b})
			d.toast(ToastSuccess, TextAdded)
			d.emitState()
		}
	})
}

func (d *Dashboard) delete(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	d.apply(reconcile.Event{Kind: reconcile.LocalDelete, ID: id})
	d.emitState()

	d.async(func(ctx context.Context) func() {
		err := d.deps.Store.Delete(ctx, d.owner, id)
		return func() {
			if err != nil {
				d.log.Warn("failed to delete bookmark", logger.String("id", id), logger.Error(err))
				d.toast(ToastError, TextDeleteFailed)
				d.refresh()
				return
			}
			d.toast(ToastSuccess, TextDeleted)
		}
	})
}

// refresh reloads the whole list from the store.
func (d *Dashboard) refresh() {
	d.async(func(ctx context.Context) func() {
		rows, err := d.deps.Store.ListByOwner(ctx, d.owner)
		return func() {
			if err != nil {
				d.log.Warn("failed to refresh bookmarks", logger.Error(err))
				d.toast(ToastError, TextRefreshFailed)
				return
			}
			d.apply(reconcile.Event{Kind: reconcile.FullRefresh, Rows: rows})
			d.emitState()
		}
	})
}

func (d *Dashboard) aiSearch(query string) {
	if d.searching {
		return
	}
	if strings.TrimSpace(query) == "" || len(d.list) == 0 {
		return
	}

	d.searching = true
	d.aiQuery = query
	d.aiIDs = nil
	d.emitState()

	candidates := domain.Candidates(d.list)
	d.async(func(ctx context.Context) func() {
		ids, err := d.deps.AI.Search(ctx, query, candidates)
		return func() {
			d.searching = false
			if err != nil {
				d.log.Warn("ai search failed", logger.Error(err))
				text := TextAIFailed
				if errors.Is(err, aisearch.ErrNotConfigured) {
					text = TextAINotConfig
				}
				d.toast(ToastError, text)
				d.emitState()
				return
			}
			if ids == nil {
				ids = []string{}
			}
			d.aiIDs = ids
			d.toast(ToastInfo, aiFoundText(len(ids)))
			d.emitState()
		}
	})
}

func aiFoundText(n int) string {
	if n == 1 {
		return "AI found 1 matching bookmark"
	}
	return fmt.Sprintf("AI found %d matching bookmarks", n)
}

func (d *Dashboard) fetchTitle(url string) {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http") {
		return
	}

	d.fetching++
	d.emitState()

	d.async(func(ctx context.Context) func() {
		title := d.deps.Titles.Fetch(ctx, url)
		return func() {
			d.fetching--
			d.emit(Message{Type: MsgTitle, Title: &TitleResult{URL: url, Title: title}})
			d.emitState()
		}
	})
}

func (d *Dashboard) applyRemote(ev realtime.Event) {
	if ev.Owner != d.owner {
		return
	}
	switch ev.Kind {
	case realtime.Insert:
		d.apply(reconcile.Event{Kind: reconcile.RemoteInsert, Bookmark: ev.Bookmark})
	case realtime.Delete:
		d.apply(reconcile.Event{Kind: reconcile.RemoteDelete, ID: ev.Bookmark.ID})
	default:
		return
	}
	d.emitState()
}

func (d *Dashboard) apply(ev reconcile.Event) {
	d.list = reconcile.Apply(d.list, ev)
}

// async runs call off the loop; the func it returns runs back on the loop.
func (d *Dashboard) async(call func(ctx context.Context) func()) {
	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		apply := call(d.ctx)
		select {
		case d.results <- apply:
		case <-d.ctx.Done():
		}
	}()
}

func (d *Dashboard) snapshot() *State {
	visible := d.list
	mode := ModeAll
	switch {
	case d.aiIDs != nil:
		visible = domain.FilterByIDs(d.list, d.aiIDs)
		mode = ModeAI
	case strings.TrimSpace(d.query) != "":
		visible = domain.Filter(d.list, d.query)
		mode = ModeSearch
	}

	out := make([]domain.Bookmark, len(visible))
	copy(out, visible)

	return &State{
		Bookmarks:     out,
		Total:         len(d.list),
		Mode:          mode,
		Query:         d.query,
		AIQuery:       d.aiQuery,
		Adding:        d.adding,
		Searching:     d.searching,
		FetchingTitle: d.fetching > 0,
		Stats:         domain.ComputeStats(d.list, d.deps.Now()),
	}
}

func (d *Dashboard) emitState() {
	d.emit(Message{Type: MsgState, State: d.snapshot()})
}

func (d *Dashboard) toast(level, text string) {
	d.emit(Message{Type: MsgToast, Toast: &Toast{Level: level, Text: text}})
}

func (d *Dashboard) emit(m Message) {
	select {
	case d.updates <- m:
	case <-d.ctx.Done():
	}
}
