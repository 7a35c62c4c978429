// internal/bot/interaction.go
package bot

import (
	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

// Kind is the interaction category handlers are registered under.
type Kind string

const (
	KindCommand   Kind = "command"
	KindComponent Kind = "component"
	KindModal     Kind = "modal"
)

// Interaction is a platform-neutral view of one user action.
type Interaction struct {
	Kind      Kind
	UserID    string
	ChannelID string
	GuildID   string

	// Command is the slash command name, Options its flattened options
	// (a subcommand is under the "subcommand" key).
	Command string
	Options map[string]string

	// CustomID is the component or modal id, split into Action and Args.
	CustomID string
	Action   string
	Args     []string
	// Values are the submitted modal inputs keyed by input id.
	Values map[string]string

	Reply *Reply
}

// Arg returns the i-th custom id argument or "".
func (in *Interaction) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return in.Args[i]
}

// Key is the name the registry dispatches on.
func (in *Interaction) Key() string {
	if in.Kind == KindCommand {
		return in.Command
	}
	return in.Action
}

// SetCustomID stores id and its parsed action and args.
func (in *Interaction) SetCustomID(id string) {
	in.CustomID = id
	in.Action, in.Args = ui.ParseID(id)
}
