package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safeledger/dashboard/internal/core/domain"
)

type memAudit struct {
	mu       sync.Mutex
	entries  []domain.AuditEntry
	attempts int
	fail     bool
}

func (m *memAudit) Insert(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.fail {
		return errors.New("mongo down")
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAudit) Recent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func (m *memAudit) snapshot() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.entries...)
}

func TestDispatcher_PersistsInSessionOrder(t *testing.T) {
	repo := &memAudit{}
	d := NewDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i, msg := range []string{"first", "second", "third"} {
		d.Record(domain.AuditEntry{SessionID: "s1", Message: msg, At: time.Unix(int64(i), 0)})
	}

	require.Eventually(t, func() bool { return len(repo.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	got := repo.snapshot()
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "third", got[2].Message)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &memAudit{}, zerolog.Nop())
	first := d.shardIndex("session-abc")
	for range 10 {
		assert.Equal(t, first, d.shardIndex("session-abc"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestDispatcher_RecordDropsWhenFull(t *testing.T) {
	repo := &memAudit{}
	d := NewDispatcher(1, repo, zerolog.Nop())
	// Workers not started: the queue only fills.
	done := make(chan struct{})
	go func() {
		for range channelBuffer + 10 {
			d.Record(domain.AuditEntry{SessionID: "s"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	assert.Len(t, d.workers[0], channelBuffer)
}

func TestDispatcher_InsertErrorDoesNotStopWorker(t *testing.T) {
	repo := &memAudit{fail: true}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(domain.AuditEntry{SessionID: "s"})
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.attempts == 1
	}, time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	repo.fail = false
	repo.mu.Unlock()
	d.Record(domain.AuditEntry{SessionID: "s", Message: "ok"})
	require.Eventually(t, func() bool { return len(repo.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ok", repo.snapshot()[0].Message)

	cancel()
	d.Wait()
}

func TestDispatcher_ShutdownPersistsQueuedEntries(t *testing.T) {
	repo := &memAudit{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	for i := 0; i < 20; i++ {
		d.Record(domain.AuditEntry{SessionID: "s1", Message: "m", At: time.Unix(int64(i), 0)})
		d.Record(domain.AuditEntry{SessionID: "s2", Message: "m", At: time.Unix(int64(i), 0)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	got := repo.snapshot()
	require.Len(t, got, 40)
	var s1 []int64
	for _, e := range got {
		if e.SessionID == "s1" {
			s1 = append(s1, e.At.Unix())
		}
	}
	require.Len(t, s1, 20)
	for i, at := range s1 {
		assert.Equal(t, int64(i), at)
	}
}
