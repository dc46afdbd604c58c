package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher persists audit entries off the request path. Entries of one session
// always land on the same worker, so they are written in the order recorded.
type Dispatcher struct {
	workers []chan domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

var _ ports.AuditRecorder = (*Dispatcher)(nil)

// Start launches all worker goroutines. When ctx is cancelled each worker persists
// what is already queued and returns.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record queues e on its session's worker. A full queue drops the entry.
func (d *Dispatcher) Record(e domain.AuditEntry) {
	idx := d.shardIndex(e.SessionID)
	select {
	case d.workers[idx] <- e:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("session_id", e.SessionID).
			Str("resource", string(e.Resource)).
			Str("action", string(e.Action)).
			Int("worker_id", idx).
			Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			d.persist(ctx, id, ch, e)
		}
	}
}

// drain persists whatever is still buffered on ch once the worker is told to stop.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	n := 0
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			d.persist(ctx, id, ch, e)
			n++
		default:
			if n > 0 {
				d.log.Info().Int("worker_id", id).Int("entries", n).Msg("audit queue drained on shutdown")
			}
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, ch <-chan domain.AuditEntry, e domain.AuditEntry) {
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))

	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()
	if err := d.repo.Insert(insertCtx, &e); err != nil {
		d.log.Error().Err(err).
			Str("session_id", e.SessionID).
			Int("worker_id", id).
			Msg("audit insert failed")
	}
}
