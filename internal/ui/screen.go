// internal/ui/screen.go
package ui

import "strings"

// Цвета embed'ов
const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
)

// MaxButtonsPerRow is the Discord action row limit.
const MaxButtonsPerRow = 5

// ButtonStyle mirrors the platform's button styles without depending on it.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

type Button struct {
	Label    string
	ID       string
	Style    ButtonStyle
	Disabled bool
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Screen is one rendered wizard step. Building a Screen has no side effects;
// the Discord layer turns it into an embed with action rows.
type Screen struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Rows        [][]Button
	Footer      string
	Ephemeral   bool
}

// AddField appends a field and returns the screen for chaining.
func (s *Screen) AddField(name, value string, inline bool) *Screen {
	if value == "" {
		value = "-"
	}
	s.Fields = append(s.Fields, Field{Name: name, Value: value, Inline: inline})
	return s
}

// AddRow appends buttons, splitting them into rows of at most MaxButtonsPerRow.
func (s *Screen) AddRow(buttons ...Button) *Screen {
	for len(buttons) > 0 {
		n := len(buttons)
		if n > MaxButtonsPerRow {
			n = MaxButtonsPerRow
		}
		s.Rows = append(s.Rows, append([]Button(nil), buttons[:n]...))
		buttons = buttons[n:]
	}
	return s
}

// Buttons returns every button on the screen in row order.
func (s Screen) Buttons() []Button {
	var out []Button
	for _, row := range s.Rows {
		out = append(out, row...)
	}
	return out
}

// Button finds a button by its exact id.
func (s Screen) Button(id string) (Button, bool) {
	for _, b := range s.Buttons() {
		if b.ID == id {
			return b, true
		}
	}
	return Button{}, false
}

// Field finds a field by name.
func (s Screen) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ErrorScreen is the textual fallback shown when a screen cannot be built.
func ErrorScreen(title, message string) Screen {
	return Screen{
		Title:       title,
		Description: message,
		Color:       ColorError,
		Ephemeral:   true,
	}
}

// Notice is a plain informational screen.
func Notice(title, message string, color int) Screen {
	return Screen{Title: title, Description: message, Color: color, Ephemeral: true}
}

// TextInput is one field of a modal form.
type TextInput struct {
	ID          string
	Label       string
	Placeholder string
	Value       string
	Required    bool
	Paragraph   bool
	MaxLength   int
}

// Modal is a text form. The Discord layer shows it in response to a button.
type Modal struct {
	ID     string
	Title  string
	Inputs []TextInput
}

// Separator joins custom id parts: "action:arg1:arg2".
const Separator = ":"

// ID builds a custom id from an action name and its arguments.
func ID(action string, args ...string) string {
	if len(args) == 0 {
		return action
	}
	return action + Separator + strings.Join(args, Separator)
}

// ParseID splits a custom id into its action and arguments.
func ParseID(customID string) (action string, args []string) {
	parts := strings.Split(customID, Separator)
	return parts[0], parts[1:]
}
