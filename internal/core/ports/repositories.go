package ports

import (
	"context"

	"github.com/safeledger/dashboard/internal/core/domain"
)

// SessionRepository persists dashboard session records.
type SessionRepository interface {
	Save(ctx context.Context, s *domain.Session) error
	// Find returns domain.ErrNotFound for unknown or expired sessions.
	Find(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// ScopeRepository persists the selected company of each session.
type ScopeRepository interface {
	// Get returns "" when nothing is stored.
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, companyID string) error
	Clear(ctx context.Context, sessionID string) error
}

// BannerStore keeps transient banners until they expire on their own.
type BannerStore interface {
	Push(ctx context.Context, sessionID string, b domain.Banner) error
	Active(ctx context.Context, sessionID string) ([]domain.Banner, error)
}

// AuditRepository stores mutation audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// AuditRecorder accepts audit entries for asynchronous persistence. Record must not block.
type AuditRecorder interface {
	Record(e domain.AuditEntry)
}
