// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/convert"
	"github.com/kumarraju1982/Convertx/internal/home"
	"github.com/kumarraju1982/Convertx/internal/ledger"
)

// Submitter starts conversions detached from the request lifetime, so
// a job survives the upload request that created it.
type Submitter interface {
	Submit(jobID string, opts convert.Options)
}

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Jobs      *ledger.Store
	Submitter Submitter
	ConfigMgr *config.Manager
	Logger    *slog.Logger
	Home      *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// JobsFrom extracts the job ledger from context.
func JobsFrom(ctx context.Context) *ledger.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Jobs
	}
	return nil
}

// SubmitterFrom extracts the conversion submitter from context.
func SubmitterFrom(ctx context.Context) Submitter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Submitter
	}
	return nil
}

// ConfigMgrFrom extracts the config manager from context.
func ConfigMgrFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
