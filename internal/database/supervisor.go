// Package database owns the lifecycle of the single Postgres connection:
// initial connect-with-retry, fallback endpoint handling, background
// reconnection on loss notifications, and graceful shutdown.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Deepanshv/resume-optimizer/internal/models"
)

// Phase is the supervisor's lifecycle state.
type Phase string

const (
	PhaseDisconnected Phase = "disconnected"
	PhaseConnecting   Phase = "connecting"
	PhaseConnected    Phase = "connected"
	PhaseReconnecting Phase = "reconnecting"
	PhaseClosed       Phase = "closed"
)

var (
	// ErrNotConnected is returned by DB() while no live handle exists; callers
	// translate it into a limited-mode response.
	ErrNotConnected = errors.New("database: not connected")

	// ErrNoReachableInstance is returned by Connect when both the primary and
	// the fallback endpoint exhausted their retry budgets.
	ErrNoReachableInstance = errors.New("database: no reachable instance")
)

// Config holds the supervisor's injected settings. Retry is deliberately
// fixed-interval with no jitter.
type Config struct {
	PrimaryDSN  string
	FallbackDSN string

	MaxRetries     int           // retries after the initial attempt
	RetryInterval  time.Duration // fixed wait between attempts
	ReconnectDelay time.Duration // wait before reconnecting after a disconnect event
}

// DefaultConfig returns the production retry policy for the given endpoints.
func DefaultConfig(primary, fallback string) Config {
	return Config{
		PrimaryDSN:     primary,
		FallbackDSN:    fallback,
		MaxRetries:     5,
		RetryInterval:  2 * time.Second,
		ReconnectDelay: 2 * time.Second,
	}
}

// dialFunc opens a connection to one endpoint. Swapped out in tests.
type dialFunc func(ctx context.Context, dsn string) (*gorm.DB, error)

// Supervisor maintains the shared connection handle. Exactly one instance is
// constructed at process start and passed to every dependent.
type Supervisor struct {
	cfg  Config
	dial dialFunc
	log  zerolog.Logger

	mu    sync.RWMutex
	db    *gorm.DB
	phase Phase

	// reconnecting serializes recovery: concurrent loss notifications must
	// never start two reconnect sequences.
	reconnecting atomic.Bool
}

// NewSupervisor builds a supervisor with the production dialer.
func NewSupervisor(cfg Config, log zerolog.Logger) *Supervisor {
	return &Supervisor{
		cfg:   cfg,
		dial:  openPostgres,
		log:   log.With().Str("component", "database").Logger(),
		phase: PhaseDisconnected,
	}
}

func openPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&models.Job{}); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Connect establishes the connection: the primary endpoint gets a full retry
// budget, and only after it is exhausted the fallback gets a fresh one. On
// total failure the supervisor stays disconnected and the service runs in
// limited mode; callers report the error but must not treat it as fatal.
func (s *Supervisor) Connect(ctx context.Context) error {
	s.setPhase(PhaseConnecting)

	db, err := s.connectWithRetry(ctx, s.cfg.PrimaryDSN)
	if err != nil && s.cfg.FallbackDSN != "" {
		s.log.Warn().Err(err).Msg("primary endpoint exhausted, trying fallback")
		db, err = s.connectWithRetry(ctx, s.cfg.FallbackDSN)
	}
	if err != nil {
		s.setPhase(PhaseDisconnected)
		return fmt.Errorf("%w: %v", ErrNoReachableInstance, err)
	}

	s.mu.Lock()
	s.db = db
	s.phase = PhaseConnected
	s.mu.Unlock()
	s.log.Info().Msg("database connection established")
	return nil
}

// connectWithRetry dials one endpoint at most 1+MaxRetries times with a fixed
// interval between attempts. Attempts are strictly sequential.
func (s *Supervisor) connectWithRetry(ctx context.Context, dsn string) (*gorm.DB, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		db, err := s.dial(ctx, dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("connection attempt failed")

		if attempt == s.cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(s.cfg.RetryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// NotifyError reports an asynchronous connection error. The reconnect runs in
// the background; its failure is logged, never propagated.
func (s *Supervisor) NotifyError(ctx context.Context) {
	s.notifyLoss(ctx, 0)
}

// NotifyDisconnect reports a disconnect event. The reconnect waits
// ReconnectDelay before dialing, giving a restarting server a moment.
func (s *Supervisor) NotifyDisconnect(ctx context.Context) {
	s.notifyLoss(ctx, s.cfg.ReconnectDelay)
}

func (s *Supervisor) notifyLoss(ctx context.Context, delay time.Duration) {
	if !s.reconnecting.CompareAndSwap(false, true) {
		return // a reconnect sequence is already in flight
	}
	s.setPhase(PhaseReconnecting)
	go func() {
		defer s.reconnecting.Store(false)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
		if err := s.Connect(ctx); err != nil {
			s.log.Error().Err(err).Msg("background reconnect failed, running in limited mode")
		}
	}()
}

// Monitor pings the live connection at the given interval and raises a loss
// notification on failure. The process wiring runs this once as a goroutine;
// it returns when ctx is cancelled.
func (s *Supervisor) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		db, err := s.DB()
		if err != nil {
			continue // nothing to watch until a connection exists
		}
		sqlDB, err := db.DB()
		if err != nil {
			s.NotifyError(ctx)
			continue
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			s.log.Warn().Err(err).Msg("connection lost")
			s.NotifyError(ctx)
		}
	}
}

// DB returns the current live handle, or ErrNotConnected while the service is
// degraded. The handle changes across reconnects, so dependents must call this
// per operation rather than caching the result.
func (s *Supervisor) DB() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil || s.phase != PhaseConnected {
		return nil, ErrNotConnected
	}
	return s.db, nil
}

// Phase returns the current lifecycle phase, for health reporting.
func (s *Supervisor) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Shutdown closes the underlying connection. The connection is released on
// every path; the caller decides the exit code from the returned error.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.phase = PhaseClosed
	s.mu.Unlock()

	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	s.log.Info().Msg("closing database connection")
	return sqlDB.Close()
}

func (s *Supervisor) setPhase(p Phase) {
	s.mu.Lock()
	// a connection that existed before means this is a recovery, not a first
	// connect; keep the reconnecting phase visible to health checks
	if p == PhaseConnecting && s.reconnecting.Load() {
		p = PhaseReconnecting
	}
	s.phase = p
	s.mu.Unlock()
}
