package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/metrics"
	"github.com/safeledger/dashboard/internal/core/domain"
	"github.com/safeledger/dashboard/internal/core/ports"
)

const defaultAuditLimit = 50

// ActivityService raises banners for mutation outcomes and records them in the audit trail.
// Neither side effect can fail the mutation itself.
type ActivityService struct {
	banners ports.BannerStore
	audit   ports.AuditRecorder
	trail   ports.AuditRepository
	log     zerolog.Logger
	now     func() time.Time
}

func NewActivityService(banners ports.BannerStore, audit ports.AuditRecorder, trail ports.AuditRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		banners: banners,
		audit:   audit,
		trail:   trail,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Succeeded records a successful mutation.
func (a *ActivityService) Succeeded(ctx context.Context, s *domain.Session, resource domain.Resource, action domain.Action, resourceID, company, message string) {
	a.emit(ctx, s, domain.Banner{Kind: domain.BannerSuccess, Message: message}, domain.AuditEntry{
		Resource:   resource,
		Action:     action,
		ResourceID: resourceID,
		CompanyID:  company,
		Outcome:    domain.OutcomeSuccess,
		Message:    message,
	})
}

// Failed records a failed mutation.
func (a *ActivityService) Failed(ctx context.Context, s *domain.Session, me *domain.MutationError, resourceID, company string) {
	a.emit(ctx, s, domain.Banner{Kind: domain.BannerError, Message: me.Message}, domain.AuditEntry{
		Resource:   me.Resource,
		Action:     me.Action,
		ResourceID: resourceID,
		CompanyID:  company,
		Outcome:    domain.OutcomeFailure,
		Message:    me.Message,
	})
}

func (a *ActivityService) emit(ctx context.Context, s *domain.Session, b domain.Banner, e domain.AuditEntry) {
	e.At = a.now()
	metrics.MutationsTotal.WithLabelValues(string(e.Resource), string(e.Action), e.Outcome).Inc()
	if s != nil {
		e.SessionID = s.ID
		if s.User != nil {
			e.Username = s.User.Username
			e.Role = s.User.Role
		}
		if err := a.banners.Push(ctx, s.ID, b); err != nil {
			a.log.Warn().Err(err).Str("session_id", s.ID).Msg("failed to push banner")
		}
	}
	a.audit.Record(e)
}

// Banners returns the banners still showing for a session. Storage errors read as none.
func (a *ActivityService) Banners(ctx context.Context, sessionID string) []domain.Banner {
	out, err := a.banners.Active(ctx, sessionID)
	if err != nil {
		a.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to read banners")
		return []domain.Banner{}
	}
	return out
}

// Recent lists the newest audit entries.
func (a *ActivityService) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultAuditLimit
	}
	return a.trail.Recent(ctx, limit)
}
