package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/smartmark/internal/aisearch"
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/realtime"
	"github.com/MrSnakeDoc/smartmark/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const owner = "alice"

// flakyStore fails on demand and can hold inserts until released.
type flakyStore struct {
	store.Store
	failInsert atomic.Bool
	failDelete atomic.Bool
	failList   atomic.Bool
	inserts    atomic.Int32
	gate       chan struct{}
}

func (s *flakyStore) Insert(ctx context.Context, o, url, title string) (domain.Bookmark, error) {
	s.inserts.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return domain.Bookmark{}, ctx.Err()
		}
	}
	if s.failInsert.Load() {
		return domain.Bookmark{}, errors.New("insert rejected")
	}
	return s.Store.Insert(ctx, o, url, title)
}

func (s *flakyStore) Delete(ctx context.Context, o, id string) error {
	if s.failDelete.Load() {
		return errors.New("delete rejected")
	}
	return s.Store.Delete(ctx, o, id)
}

func (s *flakyStore) ListByOwner(ctx context.Context, o string) ([]domain.Bookmark, error) {
	if s.failList.Load() {
		return nil, errors.New("list failed")
	}
	return s.Store.ListByOwner(ctx, o)
}

type fakeTitles struct{ title string }

func (f fakeTitles) Fetch(context.Context, string) string { return f.title }

type fakeAI struct {
	mu    sync.Mutex
	ids   []string
	err   error
	calls int
}

func (f *fakeAI) Search(_ context.Context, _ string, _ []domain.Candidate) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ids, f.err
}

func (f *fakeAI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	mem    *store.Memory
	flaky  *flakyStore
	shared store.Store // what another session of the same owner writes through
	hub    *realtime.MemoryHub
	ai     *fakeAI
	dash   *Dashboard
}

func newFixture(t *testing.T, seed ...string) *fixture {
	t.Helper()

	hub := realtime.NewMemoryHub()
	mem := store.NewMemory()
	shared := store.WithNotifications(mem, hub, logger.Nop())
	for _, url := range seed {
		if _, err := mem.Insert(context.Background(), owner, url, "Title of "+url); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	f := &fixture{
		mem:    mem,
		flaky:  &flakyStore{Store: shared},
		shared: shared,
		hub:    hub,
		ai:     &fakeAI{},
	}

	d, err := Open(context.Background(), owner, Deps{
		Store:  f.flaky,
		Hub:    hub,
		Titles: fakeTitles{title: "Fetched Title"},
		AI:     f.ai,
		Log:    logger.Nop(),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.dash = d
	t.Cleanup(func() { _ = d.Close() })
	return f
}

func (f *fixture) send(t *testing.T, cmd Command) {
	t.Helper()
	if err := f.dash.Send(context.Background(), cmd); err != nil {
		t.Fatalf("Send(%s) error = %v", cmd.Type, err)
	}
}

// waitFor reads updates until match returns true.
func waitFor(t *testing.T, d *Dashboard, what string, match func(Message) bool) Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m, ok := <-d.Updates():
			if !ok {
				t.Fatalf("updates closed while waiting for %s", what)
			}
			if match(m) {
				return m
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func isToast(text string) func(Message) bool {
	return func(m Message) bool { return m.Type == MsgToast && m.Toast.Text == text }
}

func isState(pred func(*State) bool) func(Message) bool {
	return func(m Message) bool { return m.Type == MsgState && pred(m.State) }
}

func hasID(st *State, id string) bool {
	for _, b := range st.Bookmarks {
		if b.ID == id {
			return true
		}
	}
	return false
}

func TestOpenEmitsInitialState(t *testing.T) {
	f := newFixture(t, "https://a.example.com", "https://www.b.example.com")

	m := waitFor(t, f.dash, "initial state", isState(func(*State) bool { return true }))
	st := m.State
	if st.Total != 2 || len(st.Bookmarks) != 2 {
		t.Fatalf("initial state has %d bookmarks, want 2", st.Total)
	}
	if st.Bookmarks[0].URL != "https://www.b.example.com" {
		t.Errorf("first bookmark = %s, want newest first", st.Bookmarks[0].URL)
	}
	if st.Mode != ModeAll || st.Stats.Count != 2 || st.Stats.Domains != 2 {
		t.Errorf("initial state = %+v", st)
	}
}

func TestAddThenPushKeepsOneEntry(t *testing.T) {
	f := newFixture(t)

	f.send(t, Command{Type: CmdAdd, URL: " https://go.dev ", Title: " Go "})
	added := waitFor(t, f.dash, "added", func(m Message) bool { return m.Type == MsgAdded })
	waitFor(t, f.dash, "toast", isToast(TextAdded))

	id := added.Bookmark.ID
	if added.Bookmark.URL != "https://go.dev" || added.Bookmark.Title != "Go" {
		t.Errorf("added bookmark = %+v, want trimmed fields", added.Bookmark)
	}

	// Replay the push for the same row, then a sentinel on the same channel.
	ctx := context.Background()
	_ = f.hub.Publish(ctx, realtime.InsertEvent(*added.Bookmark))
	sentinel := domain.Bookmark{ID: "sentinel", Owner: owner, URL: "https://s.example.com", Title: "S"}
	_ = f.hub.Publish(ctx, realtime.InsertEvent(sentinel))

	m := waitFor(t, f.dash, "sentinel", isState(func(st *State) bool { return hasID(st, "sentinel") }))
	if m.State.Total != 2 {
		t.Fatalf("Total = %d, want 2 (added + sentinel)", m.State.Total)
	}
	if !hasID(m.State, id) {
		t.Error("added bookmark missing")
	}
}

func TestAddFailure(t *testing.T) {
	f := newFixture(t)
	f.flaky.failInsert.Store(true)

	f.send(t, Command{Type: CmdAdd, URL: "https://go.dev", Title: "Go"})
	waitFor(t, f.dash, "failure toast", isToast(TextAddFailed))
	m := waitFor(t, f.dash, "state", isState(func(*State) bool { return true }))
	if m.State.Adding || m.State.Total != 0 {
		t.Errorf("state after failed add = %+v", m.State)
	}
}

func TestAddIgnoresBlankAndConcurrentSubmits(t *testing.T) {
	f := newFixture(t)
	f.flaky.gate = make(chan struct{})

	f.send(t, Command{Type: CmdAdd, URL: "  ", Title: "Go"})
	f.send(t, Command{Type: CmdAdd, URL: "https://go.dev", Title: "Go"})
	waitFor(t, f.dash, "adding", isState(func(st *State) bool { return st.Adding }))
	f.send(t, Command{Type: CmdAdd, URL: "https://go.dev/blog", Title: "Blog"})
	f.send(t, Command{Type: CmdSearch, Query: "sync"})
	waitFor(t, f.dash, "search applied", isState(func(st *State) bool { return st.Query == "sync" }))

	close(f.flaky.gate)
	waitFor(t, f.dash, "toast", isToast(TextAdded))

	if got := f.flaky.inserts.Load(); got != 1 {
		t.Errorf("store inserts = %d, want 1", got)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, "https://a.example.com", "https://b.example.com")
	initial := waitFor(t, f.dash, "initial", isState(func(*State) bool { return true }))
	id := initial.State.Bookmarks[0].ID

	f.send(t, Command{Type: CmdDelete, ID: id})
	m := waitFor(t, f.dash, "optimistic removal", isState(func(st *State) bool { return !hasID(st, id) }))
	if m.State.Total != 1 {
		t.Errorf("Total = %d, want 1", m.State.Total)
	}
	waitFor(t, f.dash, "toast", isToast(TextDeleted))

	rows, _ := f.mem.ListByOwner(context.Background(), owner)
	if len(rows) != 1 {
		t.Errorf("store has %d rows, want 1", len(rows))
	}
}

func TestDeleteFailureRefetches(t *testing.T) {
	f := newFixture(t, "https://a.example.com")
	initial := waitFor(t, f.dash, "initial", isState(func(*State) bool { return true }))
	id := initial.State.Bookmarks[0].ID
	f.flaky.failDelete.Store(true)

	f.send(t, Command{Type: CmdDelete, ID: id})
	waitFor(t, f.dash, "optimistic removal", isState(func(st *State) bool { return st.Total == 0 }))
	waitFor(t, f.dash, "toast", isToast(TextDeleteFailed))
	waitFor(t, f.dash, "restored", isState(func(st *State) bool { return hasID(st, id) }))
}

func TestRemoteChangesFromAnotherSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.shared.Insert(ctx, owner, "https://other-tab.example.com", "Other tab")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	waitFor(t, f.dash, "remote insert", isState(func(st *State) bool { return hasID(st, b.ID) }))

	if err := f.shared.Delete(ctx, owner, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	waitFor(t, f.dash, "remote delete", isState(func(st *State) bool { return st.Total == 0 }))
}

func TestOtherOwnersChangesAreInvisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.shared.Insert(ctx, "bob", "https://bob.example.com", "Bob's"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	sentinel := domain.Bookmark{ID: "sentinel", Owner: owner}
	_ = f.hub.Publish(ctx, realtime.InsertEvent(sentinel))

	m := waitFor(t, f.dash, "sentinel", isState(func(st *State) bool { return hasID(st, "sentinel") }))
	if m.State.Total != 1 {
		t.Errorf("Total = %d, another owner's bookmark leaked in", m.State.Total)
	}
}

func TestSearchFilter(t *testing.T) {
	f := newFixture(t, "https://food.example.com/pasta", "https://videos.example.com/cooking")

	f.send(t, Command{Type: CmdSearch, Query: "COOKING"})
	m := waitFor(t, f.dash, "search", isState(func(st *State) bool { return st.Mode == ModeSearch }))
	if len(m.State.Bookmarks) != 1 || m.State.Total != 2 {
		t.Errorf("search state = %+v", m.State)
	}

	f.send(t, Command{Type: CmdSearch, Query: ""})
	m = waitFor(t, f.dash, "cleared", isState(func(st *State) bool { return st.Mode == ModeAll }))
	if len(m.State.Bookmarks) != 2 {
		t.Errorf("cleared state shows %d bookmarks", len(m.State.Bookmarks))
	}
}

func TestAISearch(t *testing.T) {
	f := newFixture(t, "https://food.example.com/pasta", "https://go.dev")
	initial := waitFor(t, f.dash, "initial", isState(func(*State) bool { return true }))
	match := initial.State.Bookmarks[1].ID
	f.ai.ids = []string{match}

	f.send(t, Command{Type: CmdAISearch, Query: "something to eat"})
	waitFor(t, f.dash, "toast", isToast("AI found 1 matching bookmark"))
	m := waitFor(t, f.dash, "ai state", isState(func(st *State) bool { return st.Mode == ModeAI }))
	if len(m.State.Bookmarks) != 1 || m.State.Bookmarks[0].ID != match || m.State.Searching {
		t.Errorf("ai state = %+v", m.State)
	}

	f.send(t, Command{Type: CmdAIClear})
	waitFor(t, f.dash, "cleared", isState(func(st *State) bool { return st.Mode == ModeAll && len(st.Bookmarks) == 2 }))
}

func TestAISearchFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"model failure", errors.New("quota"), TextAIFailed},
		{"not configured", aisearch.ErrNotConfigured, TextAINotConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "https://go.dev")
			f.ai.err = tt.err

			f.send(t, Command{Type: CmdAISearch, Query: "go"})
			waitFor(t, f.dash, "toast", isToast(tt.want))
			m := waitFor(t, f.dash, "state", isState(func(*State) bool { return true }))
			if m.State.Mode != ModeAll || m.State.Searching {
				t.Errorf("state after failure = %+v", m.State)
			}
		})
	}
}

func TestAISearchNoOps(t *testing.T) {
	f := newFixture(t)

	f.send(t, Command{Type: CmdAISearch, Query: "anything"})
	f.send(t, Command{Type: CmdAISearch, Query: "   "})
	f.send(t, Command{Type: CmdSearch, Query: "sync"})
	waitFor(t, f.dash, "sync", isState(func(st *State) bool { return st.Query == "sync" }))

	if got := f.ai.Calls(); got != 0 {
		t.Errorf("AI called %d times on an empty list", got)
	}
}

func TestFetchTitle(t *testing.T) {
	f := newFixture(t)

	f.send(t, Command{Type: CmdFetchTitle, URL: "example.com"})
	f.send(t, Command{Type: CmdFetchTitle, URL: "https://example.com"})
	m := waitFor(t, f.dash, "title", func(m Message) bool { return m.Type == MsgTitle })
	if m.Title.URL != "https://example.com" || m.Title.Title != "Fetched Title" {
		t.Errorf("title = %+v", m.Title)
	}
	waitFor(t, f.dash, "idle", isState(func(st *State) bool { return !st.FetchingTitle }))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	// Written straight to storage: no notification.
	if _, err := f.mem.Insert(context.Background(), owner, "https://quiet.example.com", "Quiet"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	f.send(t, Command{Type: CmdRefresh})
	waitFor(t, f.dash, "refreshed", isState(func(st *State) bool { return st.Total == 1 }))

	f.flaky.failList.Store(true)
	f.send(t, Command{Type: CmdRefresh})
	waitFor(t, f.dash, "toast", isToast(TextRefreshFailed))
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.send(t, Command{Type: "explode"})
	waitFor(t, f.dash, "error", func(m Message) bool { return m.Type == MsgError && m.Error != "" })
}

func TestCloseReleasesSubscription(t *testing.T) {
	f := newFixture(t)
	if got := f.hub.Subscribers(owner); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	if err := f.dash.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.dash.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got := f.hub.Subscribers(owner); got != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", got)
	}
	for range f.dash.Updates() {
	}
	if err := f.dash.Send(context.Background(), Command{Type: CmdRefresh}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want ErrClosed", err)
	}
}

func TestCloseWhileCallsInFlight(t *testing.T) {
	f := newFixture(t)
	f.flaky.gate = make(chan struct{})

	f.send(t, Command{Type: CmdAdd, URL: "https://go.dev", Title: "Go"})
	waitFor(t, f.dash, "adding", isState(func(st *State) bool { return st.Adding }))

	done := make(chan struct{})
	go func() {
		_ = f.dash.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() blocked on an in-flight call")
	}
}

func TestOpenReleasesSubscriptionOnLoadFailure(t *testing.T) {
	hub := realtime.NewMemoryHub()
	flaky := &flakyStore{Store: store.NewMemory()}
	flaky.failList.Store(true)

	_, err := Open(context.Background(), owner, Deps{Store: flaky, Hub: hub, Titles: fakeTitles{}, AI: &fakeAI{}})
	if err == nil {
		t.Fatal("Open() should fail when the list cannot load")
	}
	if got := hub.Subscribers(owner); got != 0 {
		t.Errorf("Subscribers() = %d, want 0", got)
	}
}

func TestAIFoundText(t *testing.T) {
	for n, want := range map[int]string{
		0: "AI found 0 matching bookmarks",
		1: "AI found 1 matching bookmark",
		3: "AI found 3 matching bookmarks",
	} {
		if got := aiFoundText(n); got != want {
			t.Errorf("aiFoundText(%d) = %q, want %q", n, got, want)
		}
	}
}
