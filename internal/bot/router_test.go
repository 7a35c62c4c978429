package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T, limiter *Limiter) *Router {
	return NewRouter(NewRegistry(), limiter, nil, zaptest.NewLogger(t))
}

func TestDispatchUnknownAction(t *testing.T) {
	r := newTestRouter(t, nil)
	in, ft := component("u1", "gone:arg")

	r.Dispatch(context.Background(), in)

	assert.Equal(t, "⌛ Expired", ft.last().Title)
	assert.Equal(t, Replied, in.Reply.State())
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Registry().MustRegister(KindComponent, "boom", func(context.Context, *Interaction) error {
		panic("nil map")
	})
	in, ft := component("u1", "boom")

	assert.NotPanics(t, func() { r.Dispatch(context.Background(), in) })
	assert.Equal(t, ui.ColorError, ft.last().Color)
}

func TestDispatchPanicAfterDefer(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Registry().MustRegister(KindComponent, "slow", func(_ context.Context, in *Interaction) error {
		_ = in.Reply.Defer()
		panic("late")
	})
	in, ft := component("u1", "slow")

	r.Dispatch(context.Background(), in)
	require.Len(t, ft.sent, 2)
	assert.Equal(t, "followup", ft.sent[1].op)
}

func TestDispatchErrorMapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"validation", &types.ValidationError{Field: "amount", Reason: "must be greater than 0"}, "⚠️ Invalid input"},
		{"guided", Guide(errors.New("no wallet"), ui.Notice("👛 Wallet required", "", ui.ColorWarning)), "👛 Wallet required"},
		{"timeout", context.DeadlineExceeded, "⌛ Timed out"},
		{"other", errors.New("db down"), "❌ Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, nil)
			r.Registry().MustRegister(KindCommand, "cmd", func(context.Context, *Interaction) error { return tt.err })
			in, ft := command("u1", "cmd", nil)

			r.Dispatch(context.Background(), in)
			assert.Equal(t, tt.title, ft.last().Title)
			assert.True(t, ft.last().Ephemeral)
		})
	}
}

func TestDispatchValidationNamesConstraint(t *testing.T) {
	r := newTestRouter(t, nil)
	r.Registry().MustRegister(KindModal, "m", func(context.Context, *Interaction) error {
		return &types.ValidationError{Field: "slippage", Reason: "must be one of 50, 100, 300, 500, 1000"}
	})
	in, ft := modalSubmit("u1", "m", nil)

	r.Dispatch(context.Background(), in)
	assert.Contains(t, ft.last().Description, "slippage")
	assert.Contains(t, ft.last().Description, "1000")
}

func TestDispatchRateLimited(t *testing.T) {
	r := newTestRouter(t, NewLimiter(0.001, 1))
	calls := 0
	r.Registry().MustRegister(KindCommand, "cmd", func(_ context.Context, in *Interaction) error {
		calls++
		return in.Reply.Show(ui.Screen{Title: "ok"})
	})

	first, _ := command("u1", "cmd", nil)
	r.Dispatch(context.Background(), first)
	second, ft := command("u1", "cmd", nil)
	r.Dispatch(context.Background(), second)
	other, _ := command("u2", "cmd", nil)
	r.Dispatch(context.Background(), other)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "⏳ Slow down", ft.last().Title)
}

func TestRegistryRejectsDuplicatesAndSeparator(t *testing.T) {
	reg := NewRegistry()
	h := func(context.Context, *Interaction) error { return nil }
	require.NoError(t, reg.Register(KindComponent, "a", h))
	assert.Error(t, reg.Register(KindComponent, "a", h))
	assert.Error(t, reg.Register(KindComponent, "a:b", h))
	assert.NoError(t, reg.Register(KindModal, "a", h))

	assert.NoError(t, reg.Validate(KindComponent, "a"))
	assert.Error(t, reg.Validate(KindComponent, "a", "missing"))
}
