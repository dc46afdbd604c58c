package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// ScopeReader reads a session's selected company.
type ScopeReader interface {
	Selected(ctx context.Context, sessionID string) string
}

// ActivityRecorder reports mutation outcomes.
type ActivityRecorder interface {
	Succeeded(ctx context.Context, s *domain.Session, resource domain.Resource, action domain.Action, resourceID, company, message string)
	Failed(ctx context.Context, s *domain.Session, me *domain.MutationError, resourceID, company string)
}

// PostingService keeps one posting snapshot per (session, scope). Snapshots are
// dropped on refresh, on a scope change of the session and after a successful
// posting mutation. Otherwise they live until the session itself would have
// expired; logout forgets them at once.
//
// Each session has a generation that every invalidation replaces. A fetch stores
// its result only if the generation it started under is still current, so a
// response that arrives after an invalidation or a logout is never cached.
type PostingService struct {
	api      ports.PostingAPI
	creds    ports.CredentialProvider
	scope    ScopeReader
	activity ActivityRecorder
	log      zerolog.Logger

	cache *gocache.Cache // snapshot key -> []domain.Posting
	group singleflight.Group

	mu       sync.Mutex
	sessions *gocache.Cache // session id -> *snapshotSet
	seq      uint64
}

// snapshotSet is the cache bookkeeping of one session. Guarded by PostingService.mu.
type snapshotSet struct {
	gen  uint64
	keys map[string]struct{}
}

const (
	defaultSnapshotTTL = 12 * time.Hour
	snapshotSweep      = 10 * time.Minute
)

// NewPostingService creates a PostingService. ttl bounds how long a session's
// snapshots are kept and should match the session lifetime; <= 0 uses 12h.
func NewPostingService(api ports.PostingAPI, creds ports.CredentialProvider, scope ScopeReader, activity ActivityRecorder, ttl time.Duration, log zerolog.Logger) *PostingService {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &PostingService{
		api:      api,
		creds:    creds,
		scope:    scope,
		activity: activity,
		log:      log,
		cache:    gocache.New(ttl, snapshotSweep),
		sessions: gocache.New(ttl, snapshotSweep),
	}
}

// OnScopeChange drops the session's snapshots. Register it with ScopeService.Subscribe.
// A reset ends the session, so its bookkeeping goes too.
func (s *PostingService) OnScopeChange(change domain.ScopeChange) {
	if change.Source == domain.ScopeSourceReset {
		s.Forget(change.SessionID)
		return
	}
	s.Invalidate(change.SessionID)
}

// Invalidate drops every snapshot of a session and starts a new generation.
func (s *PostingService) Invalidate(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.snapshots(sessionID)
	s.drop(set)
	s.seq++
	set.gen = s.seq
}

// Forget drops every snapshot of a session together with its generation.
func (s *PostingService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.sessions.Get(sessionID); ok {
		s.drop(v.(*snapshotSet))
	}
	s.sessions.Delete(sessionID)
}

// snapshots returns the session's set, creating it under a fresh generation, and
// extends its expiry. Must be called with mu held.
func (s *PostingService) snapshots(sessionID string) *snapshotSet {
	var set *snapshotSet
	if v, ok := s.sessions.Get(sessionID); ok {
		set = v.(*snapshotSet)
	} else {
		s.seq++
		set = &snapshotSet{gen: s.seq, keys: make(map[string]struct{})}
	}
	s.sessions.SetDefault(sessionID, set)
	return set
}

// drop must be called with mu held.
func (s *PostingService) drop(set *snapshotSet) {
	for key := range set.keys {
		s.cache.Delete(key)
	}
	set.keys = make(map[string]struct{})
}

// Load returns the snapshot of scope, fetching it when absent. Concurrent loads of the
// same snapshot share one backend request. A caller that goes away stops waiting but
// does not abort the shared fetch. If the session switched to another scope while the
// fetch was in flight, the result is discarded and domain.ErrScopeSuperseded returned.
func (s *PostingService) Load(ctx context.Context, sess *domain.Session, scope string) ([]domain.Posting, error) {
	rows, fresh, err := s.load(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	if fresh {
		return rows, nil
	}
	if s.scope.Selected(ctx, sess.ID) != scope {
		return nil, domain.ErrScopeSuperseded
	}
	// Refreshed or mutated in flight: join the newer fetch.
	rows, _, err = s.load(ctx, sess, scope)
	return rows, err
}

// Refresh drops the session's snapshots and loads scope again.
func (s *PostingService) Refresh(ctx context.Context, sess *domain.Session, scope string) ([]domain.Posting, error) {
	s.Invalidate(sess.ID)
	return s.Load(ctx, sess, scope)
}

type flight struct {
	rows   []domain.Posting
	stored bool
}

func (s *PostingService) load(ctx context.Context, sess *domain.Session, scope string) ([]domain.Posting, bool, error) {
	key := cacheKey(sess.ID, scope)
	if v, ok := s.cache.Get(key); ok {
		metrics.PostingCacheTotal.WithLabelValues("hit").Inc()
		return v.([]domain.Posting), true, nil
	}
	metrics.PostingCacheTotal.WithLabelValues("miss").Inc()

	gen := s.generation(sess.ID)
	creds := sess.Credentials
	ch := s.group.DoChan(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		rows, err := s.api.ListPostings(context.WithoutCancel(ctx), creds, scope)
		if err != nil {
			return nil, fmt.Errorf("load postings: %w", err)
		}
		return flight{rows: rows, stored: s.store(sess.ID, key, gen, rows)}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		f := r.Val.(flight)
		return f.rows, f.stored, nil
	}
}

func (s *PostingService) generation(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots(sessionID).gen
}

func (s *PostingService) store(sessionID, key string, gen uint64, rows []domain.Posting) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.sessions.Get(sessionID)
	if !ok || v.(*snapshotSet).gen != gen {
		metrics.StaleResponsesTotal.Inc()
		s.log.Debug().Str("session_id", sessionID).Str("key", key).Msg("discarding stale posting snapshot")
		return false
	}
	set := v.(*snapshotSet)
	s.cache.SetDefault(key, rows)
	set.keys[key] = struct{}{}
	s.sessions.SetDefault(sessionID, set)
	return true
}

func cacheKey(sessionID, scope string) string {
	return sessionID + "|" + scope
}

// Create adds a posting. The company defaults to the session's selected scope.
func (s *PostingService) Create(ctx context.Context, sess *domain.Session, in ports.CreatePostingInput) (*domain.Posting, error) {
	if in.Company == "" {
		in.Company = s.scope.Selected(ctx, sess.ID)
	}

	creds, err := s.creds.Credentials(ctx, sess)
	var p *domain.Posting
	if err == nil {
		p, err = s.api.CreatePosting(ctx, creds, in)
	}
	if err != nil {
		me := domain.NewMutationError(domain.ResourcePosting, domain.ActionCreate, err)
		s.activity.Failed(ctx, sess, me, "", in.Company)
		return nil, me
	}

	s.Invalidate(sess.ID)
	s.activity.Succeeded(ctx, sess, domain.ResourcePosting, domain.ActionCreate,
		strconv.FormatInt(p.ID, 10), in.Company, domain.ResourcePosting.SuccessMessage(domain.ActionCreate))
	return p, nil
}

// Delete removes postings one by one and stops at the first failure. It returns how
// many were deleted.
func (s *PostingService) Delete(ctx context.Context, sess *domain.Session, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no postings selected", domain.ErrInvalidInput)
	}
	company := s.scope.Selected(ctx, sess.ID)

	creds, err := s.creds.Credentials(ctx, sess)
	if err != nil {
		me := domain.NewMutationError(domain.ResourcePosting, domain.ActionDelete, err)
		s.activity.Failed(ctx, sess, me, "", company)
		return 0, me
	}

	deleted := 0
	defer func() {
		if deleted > 0 {
			s.Invalidate(sess.ID)
		}
	}()
	for _, id := range ids {
		if err := s.api.DeletePosting(ctx, creds, id); err != nil {
			me := domain.NewMutationError(domain.ResourcePosting, domain.ActionDelete, err)
			s.activity.Failed(ctx, sess, me, strconv.FormatInt(id, 10), company)
			return deleted, me
		}
		deleted++
	}

	msg := domain.ResourcePosting.SuccessMessage(domain.ActionDelete)
	if deleted > 1 {
		msg = fmt.Sprintf("%d postings deleted successfully!", deleted)
	}
	s.activity.Succeeded(ctx, sess, domain.ResourcePosting, domain.ActionDelete, joinIDs(ids), company, msg)
	return deleted, nil
}

func joinIDs(ids []int64) string {
	out := make([]byte, 0, len(ids)*4)
	for i, id := range ids {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendInt(out, id, 10)
	}
	return string(out)
}
