package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apifolio/folio/internal/httpclient"
	"github.com/apifolio/folio/internal/state"
)

type item struct {
	Name string `json:"name"`
}

type recorder struct {
	mu   sync.Mutex
	hits map[string]int
}

func (r *recorder) hit(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hits == nil {
		r.hits = make(map[string]int)
	}
	r.hits[path]++
}

func (r *recorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[path]
}

func newServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hit(r.URL.Path)
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			_ = json.NewEncoder(w).Encode(item{Name: r.URL.Path})
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExecute_LoadingTrueOnlyDuringCall(t *testing.T) {
	t.Parallel()

	arrived := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		_ = json.NewEncoder(w).Encode(item{Name: "slow"})
	}))
	t.Cleanup(server.Close)

	op := New[item](context.Background(), httpclient.New(server.URL), "/slow", Options[item]{})
	if op.State().Loading {
		t.Fatal("Loading = true before execute")
	}

	done := make(chan error, 1)
	go func() {
		_, err := op.Execute(context.Background())
		done <- err
	}()

	<-arrived
	if !op.State().Loading {
		t.Fatal("Loading = false while request in flight")
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	st := op.State()
	if st.Loading {
		t.Fatal("Loading = true after execute returned")
	}
	if !st.HasData || st.Data.Name != "slow" || st.Err != nil {
		t.Fatalf("state = %#v, want data slow and no error", st)
	}
}

func TestExecute_FailureRecordsForwardsAndReturns(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	store := state.NewStore(state.Defaults())

	var gotErr error
	op := New[item](context.Background(), httpclient.New(server.URL), "/fail", Options[item]{
		Errors:  store,
		OnError: func(err error) { gotErr = err },
	})

	_, err := op.Execute(context.Background())
	if httpclient.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("Execute error = %v, want protocol 500", err)
	}
	st := op.State()
	if st.Loading || st.HasData || st.Err == nil {
		t.Fatalf("state = %#v, want error recorded and loading false", st)
	}
	if gotErr == nil || gotErr.Error() != "HTTP Error: 500" {
		t.Fatalf("OnError got %v, want HTTP Error: 500", gotErr)
	}
	if msg := store.Snapshot().Error; msg == nil || *msg != "HTTP Error: 500" {
		t.Fatalf("store error = %v, want HTTP Error: 500", msg)
	}
}

func TestExecute_NewInvocationClearsError(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	op := New[item](context.Background(), httpclient.New(server.URL), "/ok", Options[item]{})

	if _, err := op.ExecuteURL(context.Background(), "/fail"); err == nil {
		t.Fatal("ExecuteURL(/fail) returned nil error")
	}
	if op.State().Err == nil {
		t.Fatal("Err not recorded")
	}
	if _, err := op.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if st := op.State(); st.Err != nil || !st.HasData {
		t.Fatalf("state = %#v, want error cleared and data present", st)
	}
}

func TestExecute_OnSuccessErrorTakesFailurePath(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	store := state.NewStore(state.Defaults())
	onErrorCalls := 0

	op := New[item](context.Background(), httpclient.New(server.URL), "/ok", Options[item]{
		Errors:    store,
		OnSuccess: func(item) error { return errors.New("render failed") },
		OnError:   func(error) { onErrorCalls++ },
	})

	_, err := op.Execute(context.Background())
	if err == nil || err.Error() != "success callback: render failed" {
		t.Fatalf("Execute error = %v, want success callback error", err)
	}
	st := op.State()
	if st.Loading || st.HasData {
		t.Fatalf("state = %#v, want loading false and no data", st)
	}
	if onErrorCalls != 1 {
		t.Fatalf("OnError calls = %d, want 1", onErrorCalls)
	}
	if msg := store.Snapshot().Error; msg == nil || *msg != err.Error() {
		t.Fatalf("store error = %v, want %q", msg, err.Error())
	}
}

func TestExecute_PanickingCallbackResetsLoading(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	op := New[item](context.Background(), httpclient.New(server.URL), "/ok", Options[item]{
		OnSuccess: func(item) error { panic("callback exploded") },
	})

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_, _ = op.Execute(context.Background())
	}()

	if op.State().Loading {
		t.Fatal("Loading = true after panicking callback")
	}
}

func TestImmediate_RunsOnCreateAndRetarget(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	var successes atomic.Int32

	op := New[item](context.Background(), httpclient.New(server.URL), "/first", Options[item]{
		Immediate: true,
		OnSuccess: func(item) error { successes.Add(1); return nil },
	})
	op.pending.Wait()

	if rec.count("/first") != 1 {
		t.Fatalf("/first hits = %d, want 1", rec.count("/first"))
	}
	if st := op.State(); !st.HasData || st.Data.Name != "/first" {
		t.Fatalf("state = %#v, want data from /first", st)
	}

	op.SetPath(context.Background(), "/second")
	op.pending.Wait()
	if rec.count("/second") != 1 {
		t.Fatalf("/second hits = %d, want 1", rec.count("/second"))
	}

	// Same path is not a re-target.
	op.SetPath(context.Background(), "/second")
	op.pending.Wait()
	if rec.count("/second") != 1 {
		t.Fatalf("/second hits = %d after no-op SetPath, want 1", rec.count("/second"))
	}
	if successes.Load() != 2 {
		t.Fatalf("OnSuccess calls = %d, want 2", successes.Load())
	}
}

func TestNotImmediate_DoesNotFetch(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	op := New[item](context.Background(), httpclient.New(server.URL), "/lazy", Options[item]{})
	op.pending.Wait()
	time.Sleep(20 * time.Millisecond)

	if rec.count("/lazy") != 0 {
		t.Fatalf("/lazy hits = %d, want 0 without Immediate", rec.count("/lazy"))
	}
}

func TestRefetch_IgnoresPreviousOverride(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	server := newServer(t, rec)
	op := New[item](context.Background(), httpclient.New(server.URL), "/items", Options[item]{})

	got, err := op.ExecuteURL(context.Background(), "/other")
	if err != nil || got.Name != "/other" {
		t.Fatalf("ExecuteURL = %#v, %v", got, err)
	}
	got, err = op.Refetch(context.Background())
	if err != nil || got.Name != "/items" {
		t.Fatalf("Refetch = %#v, %v; want /items", got, err)
	}
	if rec.count("/items") != 1 || rec.count("/other") != 1 {
		t.Fatalf("hits = %v, want one each", rec.hits)
	}
}
