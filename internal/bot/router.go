// internal/bot/router.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"go.uber.org/zap"
)

// GuidedError is a missing-precondition failure answered with a screen that
// offers the next step instead of a bare error.
type GuidedError struct {
	Err    error
	Screen ui.Screen
}

func (e *GuidedError) Error() string { return e.Err.Error() }
func (e *GuidedError) Unwrap() error { return e.Err }

// Guide wraps err with the screen shown for it.
func Guide(err error, screen ui.Screen) error {
	return &GuidedError{Err: err, Screen: screen}
}

// Router dispatches interactions to registered handlers. Every dispatch ends
// with a response when one can be sent.
type Router struct {
	registry *Registry
	limiter  *Limiter
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewRouter creates a router. limiter and collector may be nil.
func NewRouter(registry *Registry, limiter *Limiter, collector *metrics.Collector, logger *zap.Logger) *Router {
	return &Router{
		registry: registry,
		limiter:  limiter,
		metrics:  collector,
		logger:   logger.Named("router"),
	}
}

// Registry returns the router's registry.
func (r *Router) Registry() *Registry { return r.registry }

// Dispatch runs the handler for in and answers any failure.
func (r *Router) Dispatch(ctx context.Context, in *Interaction) {
	start := time.Now()
	log := r.logger.With(
		zap.String("kind", string(in.Kind)),
		zap.String("name", in.Key()),
		zap.String("user_id", in.UserID))

	outcome := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			outcome = "panic"
			log.Error("Handler panic",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			r.fallback(log, in, genericErrorScreen())
		}
		r.metrics.RecordInteraction(string(in.Kind), outcome)
		log.Debug("Interaction handled",
			zap.String("outcome", outcome),
			zap.Duration("duration", time.Since(start)))
	}()

	if r.limiter != nil && !r.limiter.Allow(in.UserID) {
		outcome = "rate_limited"
		r.fallback(log, in, ui.Notice("⏳ Slow down", "You're doing that too fast. Please wait a moment.", ui.ColorWarning))
		return
	}

	h, ok := r.registry.Lookup(in.Kind, in.Key())
	if !ok {
		outcome = "unknown"
		log.Warn("No handler registered")
		r.fallback(log, in, ui.Notice("⌛ Expired", "This action is no longer available. Please run the command again.", ui.ColorWarning))
		return
	}

	err := h(ctx, in)
	if err == nil {
		if in.Reply.State() == Unanswered {
			log.Warn("Handler returned without responding")
		}
		return
	}

	var verr *types.ValidationError
	var guided *GuidedError
	switch {
	case errors.As(err, &verr):
		outcome = "invalid"
		log.Debug("Validation failed", zap.Error(err))
		r.fallback(log, in, ui.Notice("⚠️ Invalid input", verr.Error(), ui.ColorWarning))
	case errors.As(err, &guided):
		outcome = "guided"
		log.Info("Precondition not met", zap.Error(err))
		r.fallback(log, in, guided.Screen)
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
		log.Warn("Handler timed out", zap.Error(err))
		r.fallback(log, in, ui.Notice("⌛ Timed out", "The request took too long. Please try again.", ui.ColorWarning))
	default:
		outcome = "error"
		log.Error("Handler failed", zap.Error(err))
		r.fallback(log, in, genericErrorScreen())
	}
}

// fallback sends screen as a separate message so the current one stays.
func (r *Router) fallback(log *zap.Logger, in *Interaction, screen ui.Screen) {
	if in.Reply == nil {
		return
	}
	screen.Ephemeral = true
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Fallback reply panicked", zap.Any("panic", rec))
		}
	}()
	if err := in.Reply.Send(screen); err != nil {
		log.Error("Failed to send fallback reply",
			zap.String("reply_state", in.Reply.State().String()),
			zap.Error(err))
	}
}

func genericErrorScreen() ui.Screen {
	return ui.ErrorScreen("❌ Something went wrong", "An unexpected error occurred. Please try again.")
}

// MustRegister is Register that panics, for static handler tables at startup.
func (r *Registry) MustRegister(kind Kind, name string, h HandlerFunc) {
	if err := r.Register(kind, name, h); err != nil {
		panic(fmt.Sprintf("register handler: %v", err))
	}
}
