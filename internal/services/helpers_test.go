package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"egov-portal/internal/models"
	"egov-portal/internal/store"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu  sync.Mutex
	got []models.Notification
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
	return p.err
}

func (p *recordingPublisher) published() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Notification, len(p.got))
	copy(out, p.got)
	return out
}

var errPublish = errors.New("publish failed")

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, store.SeedDemo(context.Background(), st))
	return st
}

func demoUser(t *testing.T, st store.Store, email string) models.User {
	t.Helper()
	user, err := st.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
