package bot

import (
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

type sent struct {
	op     string // respond, edit, followup
	kind   ResponseKind
	screen *ui.Screen
	modal  *ui.Modal
}

// fakeTransport запоминает все ответы на одно взаимодействие.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeTransport) Respond(kind ResponseKind, screen *ui.Screen, modal *ui.Modal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{op: "respond", kind: kind, screen: screen, modal: modal})
	return f.err
}

func (f *fakeTransport) EditOriginal(screen ui.Screen) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{op: "edit", screen: &screen})
	return f.err
}

func (f *fakeTransport) Followup(screen ui.Screen) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{op: "followup", screen: &screen})
	return f.err
}

// screens returns every screen sent, in order.
func (f *fakeTransport) screens() []ui.Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ui.Screen
	for _, s := range f.sent {
		if s.screen != nil {
			out = append(out, *s.screen)
		}
	}
	return out
}

func (f *fakeTransport) last() ui.Screen {
	screens := f.screens()
	if len(screens) == 0 {
		return ui.Screen{}
	}
	return screens[len(screens)-1]
}

func (f *fakeTransport) modal() *ui.Modal {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sent {
		if s.modal != nil {
			return s.modal
		}
	}
	return nil
}

func command(userID, name string, options map[string]string) (*Interaction, *fakeTransport) {
	t := &fakeTransport{}
	if options == nil {
		options = map[string]string{}
	}
	return &Interaction{
		Kind:      KindCommand,
		UserID:    userID,
		ChannelID: "chan1",
		Command:   name,
		Options:   options,
		Reply:     NewReply(t, false),
	}, t
}

func component(userID, customID string) (*Interaction, *fakeTransport) {
	t := &fakeTransport{}
	in := &Interaction{Kind: KindComponent, UserID: userID, ChannelID: "chan1", Reply: NewReply(t, true)}
	in.SetCustomID(customID)
	return in, t
}

func modalSubmit(userID, customID string, values map[string]string) (*Interaction, *fakeTransport) {
	t := &fakeTransport{}
	in := &Interaction{Kind: KindModal, UserID: userID, ChannelID: "chan1", Values: values, Reply: NewReply(t, true)}
	in.SetCustomID(customID)
	return in, t
}
