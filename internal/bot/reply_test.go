package bot

import (
	"errors"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyShowFirstResponse(t *testing.T) {
	ft := &fakeTransport{}
	r := NewReply(ft, false)

	require.NoError(t, r.Show(ui.Screen{Title: "a"}))
	require.NoError(t, r.Show(ui.Screen{Title: "b"}))

	require.Len(t, ft.sent, 2)
	assert.Equal(t, "respond", ft.sent[0].op)
	assert.Equal(t, ResponseMessage, ft.sent[0].kind)
	assert.Equal(t, "followup", ft.sent[1].op)
	assert.Equal(t, Replied, r.State())
}

func TestReplyComponentUpdatesInPlace(t *testing.T) {
	ft := &fakeTransport{}
	r := NewReply(ft, true)

	require.NoError(t, r.Show(ui.Screen{Title: "a"}))
	require.NoError(t, r.Show(ui.Screen{Title: "b"}))

	assert.Equal(t, ResponseUpdate, ft.sent[0].kind)
	assert.Equal(t, "edit", ft.sent[1].op)
}

func TestReplyDeferThenEdit(t *testing.T) {
	ft := &fakeTransport{}
	r := NewReply(ft, true)

	require.NoError(t, r.Defer())
	require.NoError(t, r.Defer())
	assert.Equal(t, Deferred, r.State())
	require.NoError(t, r.Show(ui.Screen{Title: "done"}))

	require.Len(t, ft.sent, 2)
	assert.Equal(t, ResponseDeferUpdate, ft.sent[0].kind)
	assert.Equal(t, "edit", ft.sent[1].op)
	assert.Equal(t, Replied, r.State())
}

func TestReplySendKeepsCurrentMessage(t *testing.T) {
	ft := &fakeTransport{}
	r := NewReply(ft, true)
	require.NoError(t, r.Show(ui.Screen{Title: "panel"}))
	require.NoError(t, r.Send(ui.Screen{Title: "result"}))

	assert.Equal(t, "followup", ft.sent[1].op)
}

func TestReplyModalOnlyFirst(t *testing.T) {
	ft := &fakeTransport{}
	r := NewReply(ft, true)
	require.NoError(t, r.Modal(ui.Modal{ID: "m"}))
	assert.ErrorIs(t, r.Modal(ui.Modal{ID: "m"}), ErrModalAfterReply)

	r = NewReply(&fakeTransport{}, true)
	require.NoError(t, r.Defer())
	assert.ErrorIs(t, r.Modal(ui.Modal{ID: "m"}), ErrModalAfterReply)
}

func TestReplyTransportErrorKeepsState(t *testing.T) {
	ft := &fakeTransport{err: errors.New("boom")}
	r := NewReply(ft, false)
	assert.Error(t, r.Show(ui.Screen{}))
	assert.Equal(t, Unanswered, r.State())
}
