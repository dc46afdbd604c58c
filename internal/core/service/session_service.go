package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

// ScopeDefaulter applies the default company selection and clears it on logout.
type ScopeDefaulter interface {
	ApplyDefault(ctx context.Context, s *domain.Session) (string, error)
	Reset(ctx context.Context, sessionID string) error
}

// SessionService resolves dashboard sessions against the ledger backend.
type SessionService struct {
	api      ports.SessionAPI
	sessions ports.SessionRepository
	scope    ScopeDefaulter
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewSessionService(api ports.SessionAPI, sessions ports.SessionRepository, scope ScopeDefaulter, log zerolog.Logger) *SessionService {
	return &SessionService{
		api:      api,
		sessions: sessions,
		scope:    scope,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Login signs in against the backend and creates a new dashboard session.
// Backend rejections come back as *domain.MutationError.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, domain.Resolution, error) {
	creds, err := s.api.FetchCSRF(ctx, domain.Credentials{})
	if err == nil {
		creds, err = s.api.Login(ctx, creds, email, password)
	}
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(string(domain.ResourceSession), string(domain.ActionLogin), domain.OutcomeFailure).Inc()
		return nil, domain.Resolution{State: domain.SessionUnauthenticated}, domain.NewMutationError(domain.ResourceSession, domain.ActionLogin, err)
	}
	metrics.MutationsTotal.WithLabelValues(string(domain.ResourceSession), string(domain.ActionLogin), domain.OutcomeSuccess).Inc()

	sess := &domain.Session{
		ID:          s.newID(),
		Credentials: creds,
		State:       domain.SessionUnknown,
		CreatedAt:   s.now(),
	}
	res, err := s.Resolve(ctx, sess)
	if err != nil {
		return nil, res, err
	}
	return sess, res, nil
}

// Resolve checks the session with the backend. Any failure of the check, including
// redirects and unreachable backends, resolves to unauthenticated. Only storage
// failures are returned as errors.
func (s *SessionService) Resolve(ctx context.Context, sess *domain.Session) (domain.Resolution, error) {
	user, err := s.api.UserDetails(ctx, sess.Credentials)
	sess.ResolvedAt = s.now()
	if err != nil || user == nil {
		s.log.Debug().Err(err).Str("session_id", sess.ID).Msg("session resolved unauthenticated")
		metrics.SessionResolutionsTotal.WithLabelValues(string(domain.SessionUnauthenticated)).Inc()
		sess.State = domain.SessionUnauthenticated
		sess.User = nil
		if err := s.sessions.Save(ctx, sess); err != nil {
			return domain.Resolution{State: domain.SessionUnauthenticated}, fmt.Errorf("save session: %w", err)
		}
		return domain.Resolution{State: domain.SessionUnauthenticated}, nil
	}

	metrics.SessionResolutionsTotal.WithLabelValues(string(domain.SessionAuthenticated)).Inc()
	sess.State = domain.SessionAuthenticated
	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.Resolution{State: domain.SessionUnauthenticated}, fmt.Errorf("save session: %w", err)
	}

	selected, err := s.scope.ApplyDefault(ctx, sess)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to apply default scope")
	}

	s.log.Info().
		Str("session_id", sess.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Str("scope", selected).
		Msg("session resolved")

	return domain.Resolution{State: domain.SessionAuthenticated, User: user, SelectedCompany: selected}, nil
}

// Logout ends the backend session and forgets the dashboard session. It succeeds
// locally even when the backend cannot be reached.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) error {
	creds, err := s.Credentials(ctx, sess)
	if err == nil {
		err = s.api.Logout(ctx, creds)
	}
	outcome := domain.OutcomeSuccess
	if err != nil {
		outcome = domain.OutcomeFailure
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("backend logout failed")
	}
	metrics.MutationsTotal.WithLabelValues(string(domain.ResourceSession), string(domain.ActionLogout), outcome).Inc()

	if err := s.scope.Reset(ctx, sess.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to reset scope")
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Session loads a session record.
func (s *SessionService) Session(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.sessions.Find(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// Credentials returns the session's backend credentials, fetching a CSRF token first
// when the session does not have one yet.
func (s *SessionService) Credentials(ctx context.Context, sess *domain.Session) (domain.Credentials, error) {
	if sess.Credentials.CSRFToken != "" {
		return sess.Credentials, nil
	}
	creds, err := s.api.FetchCSRF(ctx, sess.Credentials)
	if err != nil {
		return sess.Credentials, fmt.Errorf("fetch csrf token: %w", err)
	}
	sess.Credentials = creds
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to persist csrf token")
	}
	return creds, nil
}
