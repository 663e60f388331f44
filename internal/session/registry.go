package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/capshop-backend/internal/cart"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/customize"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultIdleTTL       = 12 * time.Hour
	defaultSweepInterval = 10 * time.Minute

	sweepJobName = "session_sweep"
)

// CatalogSource supplies the configurator's base hats and categories.
type CatalogSource interface {
	ListBaseHats(ctx context.Context) ([]catalog.BaseHat, error)
	ListCustomizationCategories(ctx context.Context) ([]catalog.CustomizationCategory, error)
}

// Session is one shopper's in-memory state: a cart and, once the shopper
// opens the builder, a configurator.
type Session struct {
	ID   string
	Cart *cart.Cart

	mu           sync.Mutex
	configurator *customize.Configurator
	lastSeen     time.Time
}

// RegistryParams configure a Registry.
type RegistryParams struct {
	Logger        *logger.Logger
	Validator     cart.PromoValidator
	Catalog       CatalogSource
	Metrics       *metrics.Storefront
	IdleTTL       time.Duration
	MaxImageBytes int64
	Now           func() time.Time
}

// Registry owns every live shopper session.
type Registry struct {
	logg          *logger.Logger
	validator     cart.PromoValidator
	catalog       CatalogSource
	metrics       *metrics.Storefront
	idleTTL       time.Duration
	maxImageBytes int64
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry.
func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	ttl := params.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		logg:          params.Logger,
		validator:     params.Validator,
		catalog:       params.Catalog,
		metrics:       params.Metrics,
		idleTTL:       ttl,
		maxImageBytes: params.MaxImageBytes,
		now:           now,
		sessions:      map[string]*Session{},
	}, nil
}

// Resolve returns the session for id, creating one when id is unknown.
// A new session always gets a server-minted id; ids the registry never issued
// are not adopted. The boolean reports whether a new session was created.
func (r *Registry) Resolve(id string) (*Session, bool) {
	id = strings.TrimSpace(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		sess.lastSeen = r.now()
		return sess, false
	}

	id = uuid.NewString()
	sess := &Session{
		ID:       id,
		Cart:     cart.New(r.validator),
		lastSeen: r.now(),
	}
	r.sessions[id] = sess
	r.metrics.SetActiveSessions(len(r.sessions))
	return sess, true
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[strings.TrimSpace(id)]
	if ok {
		sess.lastSeen = r.now()
	}
	return sess, ok
}

// Delete drops a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	r.metrics.SetActiveSessions(len(r.sessions))
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Configurator returns the session's configurator, loading the catalog and
// building one on first use.
func (r *Registry) Configurator(ctx context.Context, sess *Session) (*customize.Configurator, error) {
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session required")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.configurator != nil {
		return sess.configurator, nil
	}

	hats, err := r.catalog.ListBaseHats(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := r.catalog.ListCustomizationCategories(ctx)
	if err != nil {
		return nil, err
	}
	configurator, err := customize.NewConfigurator(hats, categories, customize.Options{
		MaxImageBytes: r.maxImageBytes,
		Now:           r.now,
	})
	if err != nil {
		return nil, err
	}
	sess.configurator = configurator
	return configurator, nil
}

// ResetConfigurator forgets the session's configurator so the next request
// starts from a fresh catalog snapshot.
func (r *Registry) ResetConfigurator(sess *Session) {
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.configurator = nil
	sess.mu.Unlock()
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	r.metrics.SetActiveSessions(len(r.sessions))
	return removed
}

// Run sweeps idle sessions on a fixed cadence until ctx is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx = r.logg.WithField(ctx, "job", sweepJobName)
	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "session sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			removed := r.Sweep()
			r.metrics.ObserveJob(sweepJobName, time.Since(start), nil)
			if removed > 0 {
				r.logg.Info(r.logg.WithFields(ctx, map[string]any{
					"removed":   removed,
					"remaining": r.Len(),
				}), "idle sessions swept")
			}
		}
	}
}
