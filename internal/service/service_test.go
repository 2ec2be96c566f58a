package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/events"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/internal/testutil"
	"github.com/Skotchmaster/paperman/internal/transport"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}
	}
	return r.events[len(r.events)-1]
}

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(testutil.NewDB(t))
}

func newNode(t *testing.T) *snowflake.Node {
	t.Helper()
	n, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return n
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var fe interface{ FieldErrors() map[string]string }
	require.True(t, errors.As(err, &fe), "expected field errors, got %v", err)
	return fe.FieldErrors()
}

func seedCategory(t *testing.T, r *repo.GormRepo, name string) {
	t.Helper()
	_, err := NewCategoryService(r, nil).Create(context.Background(), transport.CategoryRequest{Name: name})
	require.NoError(t, err)
}
