package ui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRowSplits(t *testing.T) {
	var s Screen
	var buttons []Button
	for i := 0; i < 7; i++ {
		buttons = append(buttons, Button{Label: fmt.Sprint(i), ID: ID("b", fmt.Sprint(i))})
	}
	s.AddRow(buttons...)

	assert.Len(t, s.Rows, 2)
	assert.Len(t, s.Rows[0], MaxButtonsPerRow)
	assert.Len(t, s.Rows[1], 2)
	assert.Len(t, s.Buttons(), 7)

	b, ok := s.Button("b:6")
	assert.True(t, ok)
	assert.Equal(t, "6", b.Label)
}

func TestCustomID(t *testing.T) {
	id := ID("quick_buy", "sol_buy", "min")
	assert.Equal(t, "quick_buy:sol_buy:min", id)

	action, args := ParseID(id)
	assert.Equal(t, "quick_buy", action)
	assert.Equal(t, []string{"sol_buy", "min"}, args)

	action, args = ParseID("refresh")
	assert.Equal(t, "refresh", action)
	assert.Empty(t, args)
}

func TestAddFieldPlaceholder(t *testing.T) {
	var s Screen
	s.AddField("Token", "", true)
	f, ok := s.Field("Token")
	assert.True(t, ok)
	assert.Equal(t, "-", f.Value)
}
