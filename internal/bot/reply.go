// internal/bot/reply.go
package bot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

// ReplyState tracks what has been sent for one interaction. The platform
// allows exactly one initial response; everything after it is an edit or a
// followup.
type ReplyState int

const (
	Unanswered ReplyState = iota
	Deferred
	Replied
)

func (s ReplyState) String() string {
	switch s {
	case Unanswered:
		return "unanswered"
	case Deferred:
		return "deferred"
	case Replied:
		return "replied"
	}
	return fmt.Sprintf("reply_state(%d)", int(s))
}

// ResponseKind is the initial response type.
type ResponseKind int

const (
	ResponseMessage ResponseKind = iota + 1
	ResponseUpdate
	ResponseDeferMessage
	ResponseDeferUpdate
	ResponseModal
)

// Transport performs the platform calls for one interaction.
type Transport interface {
	Respond(kind ResponseKind, screen *ui.Screen, modal *ui.Modal) error
	EditOriginal(screen ui.Screen) error
	Followup(screen ui.Screen) error
}

var ErrModalAfterReply = errors.New("a modal can only be the first response")

// Reply sends responses through the transport according to its state. It is
// safe for use by one handler and the router's fallback at the same time.
type Reply struct {
	mu        sync.Mutex
	transport Transport
	state     ReplyState
	// component interactions update the message the button sits on
	component bool
}

// NewReply creates a reply for a fresh interaction.
func NewReply(t Transport, component bool) *Reply {
	return &Reply{transport: t, component: component}
}

// State returns the current reply state.
func (r *Reply) State() ReplyState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Defer acknowledges the interaction so a slow handler keeps its window.
// It does nothing once any response was sent.
func (r *Reply) Defer() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Unanswered {
		return nil
	}
	kind := ResponseDeferMessage
	if r.component {
		kind = ResponseDeferUpdate
	}
	if err := r.transport.Respond(kind, nil, nil); err != nil {
		return fmt.Errorf("defer: %w", err)
	}
	r.state = Deferred
	return nil
}

// Show replaces the current screen: the first response, an edit after a
// defer, or for component interactions an in-place update.
func (r *Reply) Show(screen ui.Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case Unanswered:
		kind := ResponseMessage
		if r.component {
			kind = ResponseUpdate
		}
		if err := r.transport.Respond(kind, &screen, nil); err != nil {
			return fmt.Errorf("respond: %w", err)
		}
		r.state = Replied
		return nil
	case Deferred:
		if err := r.transport.EditOriginal(screen); err != nil {
			return fmt.Errorf("edit: %w", err)
		}
		r.state = Replied
		return nil
	default:
		if r.component {
			if err := r.transport.EditOriginal(screen); err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			return nil
		}
		if err := r.transport.Followup(screen); err != nil {
			return fmt.Errorf("followup: %w", err)
		}
		return nil
	}
}

// Send posts screen as a new message, leaving the current one in place.
func (r *Reply) Send(screen ui.Screen) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Unanswered {
		if err := r.transport.Respond(ResponseMessage, &screen, nil); err != nil {
			return fmt.Errorf("respond: %w", err)
		}
		r.state = Replied
		return nil
	}
	if err := r.transport.Followup(screen); err != nil {
		return fmt.Errorf("followup: %w", err)
	}
	r.state = Replied
	return nil
}

// Modal opens a form. Only possible as the first response.
func (r *Reply) Modal(m ui.Modal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Unanswered {
		return ErrModalAfterReply
	}
	if err := r.transport.Respond(ResponseModal, nil, &m); err != nil {
		return fmt.Errorf("modal: %w", err)
	}
	r.state = Replied
	return nil
}
