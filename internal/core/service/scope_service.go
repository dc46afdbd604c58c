package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// ScopeService is the single owner of each session's selected company. Every write
// goes through set, which persists the value and then notifies subscribers.
type ScopeService struct {
	repo ports.ScopeRepository
	log  zerolog.Logger

	// mu serialises writes so that ScopeChange.Previous is exact.
	mu sync.Mutex

	subMu  sync.RWMutex
	subs   map[int]func(domain.ScopeChange)
	nextID int
}

func NewScopeService(repo ports.ScopeRepository, log zerolog.Logger) *ScopeService {
	return &ScopeService{
		repo: repo,
		log:  log,
		subs: make(map[int]func(domain.ScopeChange)),
	}
}

// Selected returns the stored selection, or "" when none is stored or the store is down.
func (s *ScopeService) Selected(ctx context.Context, sessionID string) string {
	id, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("scope read failed, treating as unset")
		return ""
	}
	return id
}

// Select stores a company chosen by the user. Customers cannot change their scope.
// Only superusers may clear it to see every company.
func (s *ScopeService) Select(ctx context.Context, sess *domain.Session, companyID string) (string, error) {
	if !sess.Authenticated() {
		return "", domain.ErrUnauthenticated
	}
	if !sess.User.CanSelectCompany() {
		return "", domain.ErrScopeLocked
	}
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		if sess.Role() != domain.RoleSuperuser {
			return "", fmt.Errorf("%w: company is required", domain.ErrInvalidScope)
		}
	} else if id, err := strconv.ParseInt(companyID, 10, 64); err != nil || id <= 0 {
		return "", fmt.Errorf("%w: %q is not a company id", domain.ErrInvalidScope, companyID)
	} else {
		companyID = strconv.FormatInt(id, 10)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.set(ctx, sess.ID, companyID, domain.ScopeSourceUser); err != nil {
		return "", err
	}
	return companyID, nil
}

// ApplyDefault runs the default selection policy for a freshly resolved user and
// returns the resulting selection.
func (s *ScopeService) ApplyDefault(ctx context.Context, sess *domain.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Selected(ctx, sess.ID)
	next, changed := domain.DefaultScope(sess.User, current)
	if !changed {
		return current, nil
	}
	if err := s.set(ctx, sess.ID, next, domain.ScopeSourceDefault); err != nil {
		return current, err
	}
	return next, nil
}

// Reset forgets the selection of a session, as done on logout.
func (s *ScopeService) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, sessionID, "", domain.ScopeSourceReset)
}

// Subscribe registers fn for every persisted change and returns a function that
// removes it again.
func (s *ScopeService) Subscribe(fn func(domain.ScopeChange)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// set must be called with mu held.
func (s *ScopeService) set(ctx context.Context, sessionID, companyID string, source domain.ScopeSource) error {
	previous := s.Selected(ctx, sessionID)

	var err error
	if companyID == "" {
		err = s.repo.Clear(ctx, sessionID)
	} else {
		err = s.repo.Set(ctx, sessionID, companyID)
	}
	if err != nil {
		return fmt.Errorf("persist scope: %w", err)
	}

	metrics.ScopeChangesTotal.WithLabelValues(string(source)).Inc()
	s.log.Debug().
		Str("session_id", sessionID).
		Str("previous", previous).
		Str("current", companyID).
		Str("source", string(source)).
		Msg("scope changed")

	change := domain.ScopeChange{SessionID: sessionID, Previous: previous, Current: companyID, Source: source}
	s.subMu.RLock()
	fns := make([]func(domain.ScopeChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()
	for _, fn := range fns {
		fn(change)
	}
	return nil
}
