package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corvid89/taskhub/internal/auth"
	"github.com/corvid89/taskhub/internal/cache"
	"github.com/corvid89/taskhub/internal/client"
	"github.com/corvid89/taskhub/internal/config"
	"github.com/corvid89/taskhub/internal/domain/task"
	apihttp "github.com/corvid89/taskhub/internal/http"
	"github.com/corvid89/taskhub/internal/repo/memory"
)

// startServer assembles the real route tree on memory repos and returns the
// wired client pieces. Everything but the network is production code.
func startServer(t *testing.T) (*httptest.Server, *client.Client, *client.TaskStore, *client.Session, *memory.UsersRepo) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		JWTSecret: "test-secret",
		CacheTTL:  30 * time.Second,
	}

	users := memory.NewUsersRepo()

	deps := apihttp.Deps{
		Users:   users,
		Tasks:   memory.NewTasksRepo(),
		Cache:   cache.NewMemory(cfg.CacheTTL),
		Backend: "memory",
		JWT:     auth.NewManager(cfg.JWTSecret, time.Hour),
		Ping:    func() error { return nil },
	}

	srv := httptest.NewServer(apihttp.NewRouterWithDeps(log, cfg, deps))
	t.Cleanup(srv.Close)

	session := client.NewSession(nil)
	api := client.New(srv.URL, session)
	store := client.NewTaskStore(api)

	return srv, api, store, session, users
}

// Full round trip through the public surface: register, create, toggle,
// filter, delete.
func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	_, api, store, session, _ := startServer(t)

	u, err := api.Register(ctx, "Alice", "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@x.com" {
		t.Fatalf("got registered email %q", u.Email)
	}
	if _, ok := session.Token(); !ok {
		t.Fatalf("register should establish a session")
	}

	created, err := store.Create(ctx, task.CreateTaskRequest{Title: "Buy milk", Priority: task.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Completed {
		t.Fatalf("new task should start pending")
	}
	if created.Priority != task.PriorityHigh {
		t.Fatalf("got priority %q", created.Priority)
	}
	if created.UserID != u.ID {
		t.Fatalf("task not owned by the caller: %q vs %q", created.UserID, u.ID)
	}

	toggled, message, err := store.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("toggle did not complete the task")
	}
	if message != "Task marked as completed" {
		t.Fatalf("got toggle message %q", message)
	}

	// completed task no longer shows up under the pending filter
	store.SetFilters(client.Filters{Status: "pending"})
	if err := store.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := store.FilteredTasks(); len(got) != 0 {
		t.Fatalf("pending view should be empty, got %d tasks", len(got))
	}

	store.SetFilters(client.Filters{Status: "all"})
	if err := store.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// a second delete answers 404
	err = store.Delete(ctx, created.ID)

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("second delete: want 404 APIError, got %v", err)
	}
}

func TestLoginWrongPasswordLeavesSessionOut(t *testing.T) {
	ctx := context.Background()
	_, api, _, session, _ := startServer(t)

	if _, err := api.Register(ctx, "Alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	session.Clear()

	_, err := api.Login(ctx, "alice@x.com", "wrong-one")
	if !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	if _, ok := session.Token(); ok {
		t.Fatalf("failed login must not leave a token behind")
	}

	// the right password still works afterwards
	if _, err := api.Login(ctx, "alice@x.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok := session.Token(); !ok {
		t.Fatalf("login should establish a session")
	}
}

func TestDeletedUserGetsLoggedOut(t *testing.T) {
	ctx := context.Background()
	_, api, store, session, users := startServer(t)

	u, err := api.Register(ctx, "Alice", "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// the account vanishes server-side; the stored token is now orphaned
	users.Remove(u.ID)

	err = store.Fetch(ctx)
	if !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
	if _, ok := session.Token(); ok {
		t.Fatalf("a 401 should clear the session")
	}
}

func TestFailedActionLeavesStoreIntact(t *testing.T) {
	ctx := context.Background()
	_, _, store, _, _ := startServer(t)

	// no session at all: every call 401s
	err := store.Fetch(ctx)
	if err == nil {
		t.Fatalf("expected fetch without a session to fail")
	}
	if store.Err() == "" {
		t.Fatalf("failure should be recorded on the store")
	}
	if store.Loading() {
		t.Fatalf("store stuck in loading after a failure")
	}

	store.ClearErr()
	if store.Err() != "" {
		t.Fatalf("ClearErr did not clear")
	}
}

func TestStoreKeepsTasksWhenCreateFails(t *testing.T) {
	ctx := context.Background()
	_, api, store, _, _ := startServer(t)

	if _, err := api.Register(ctx, "Alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := store.Create(ctx, task.CreateTaskRequest{Title: "Keep me"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// whitespace-only title is rejected server-side
	_, err := store.Create(ctx, task.CreateTaskRequest{Title: "   "})
	if err == nil {
		t.Fatalf("expected validation failure")
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Fatalf("want 400 APIError, got %v", err)
	}

	if got := store.Tasks(); len(got) != 1 || got[0].Title != "Keep me" {
		t.Fatalf("failed create disturbed the store: %+v", got)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	_, api, store, _, _ := startServer(t)

	if _, err := api.Register(ctx, "Alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	high, err := store.Create(ctx, task.CreateTaskRequest{Title: "H", Priority: task.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, task.CreateTaskRequest{Title: "M"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, task.CreateTaskRequest{Title: "L", Priority: task.PriorityLow}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := store.Toggle(ctx, high.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	st := store.Stats()
	want := client.Stats{Total: 3, Completed: 1, Pending: 2, High: 1, Medium: 1, Low: 1}
	if st != want {
		t.Fatalf("got stats %+v, want %+v", st, want)
	}

	// stats ignore the active filters
	store.SetFilters(client.Filters{Status: "pending"})
	if st := store.Stats(); st != want {
		t.Fatalf("filters leaked into stats: %+v", st)
	}
}

func TestUsersCannotSeeEachOthersTasks(t *testing.T) {
	ctx := context.Background()
	srv, apiAlice, storeAlice, _, _ := startServer(t)

	if _, err := apiAlice.Register(ctx, "Alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("register alice: %v", err)
	}

	created, err := storeAlice.Create(ctx, task.CreateTaskRequest{Title: "Alice's task"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// a second, independent session against the same server
	sessionBob := client.NewSession(nil)
	apiBob := client.New(srv.URL, sessionBob)
	storeBob := client.NewTaskStore(apiBob)

	if _, err := apiBob.Register(ctx, "Bob", "bob@x.com", "secret1"); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	if err := storeBob.Fetch(ctx); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := storeBob.Tasks(); len(got) != 0 {
		t.Fatalf("bob can see alice's tasks: %+v", got)
	}

	// acting on her task reads as not found, not forbidden
	_, _, err = storeBob.Toggle(ctx, created.ID)

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("want 404 APIError, got %v", err)
	}
}
