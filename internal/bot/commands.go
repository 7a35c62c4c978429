// internal/bot/commands.go
package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// Slash команды
const (
	CommandWallet       = "wallet"
	CommandBuy          = "buy"
	CommandSell         = "sell"
	CommandSettings     = "settings"
	CommandResearch     = "research"
	CommandMarketMaking = "marketmaking"
	CommandChannel      = "channel"
)

// Опции команд
const (
	OptionChain      = "chain"
	OptionToken      = "token"
	OptionSubcommand = "subcommand"

	SubcommandRegister   = "register"
	SubcommandUnregister = "unregister"
	SubcommandPrimary    = "primary"
)

func chainOptionDef(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptionChain,
		Description: "Blockchain",
		Required:    required,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Solana", Value: string(types.ChainSolana)},
			{Name: "XRP Ledger", Value: string(types.ChainXRPL)},
		},
	}
}

func tokenOptionDef() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptionToken,
		Description: "Token address",
		MaxLength:   100,
	}
}

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{Name: CommandWallet, Description: "Show, generate or import your custody wallets"},
		{
			Name:        CommandBuy,
			Description: "Buy a token",
			Options:     []*discordgo.ApplicationCommandOption{chainOptionDef(true), tokenOptionDef()},
		},
		{
			Name:        CommandSell,
			Description: "Sell a token",
			Options:     []*discordgo.ApplicationCommandOption{chainOptionDef(true), tokenOptionDef()},
		},
		{Name: CommandSettings, Description: "Edit your quick-trade presets"},
		{
			Name:        CommandResearch,
			Description: "Look up market data for a token",
			Options:     []*discordgo.ApplicationCommandOption{chainOptionDef(false), tokenOptionDef()},
		},
		{Name: CommandMarketMaking, Description: "Configure and run market making"},
		{
			Name:        CommandChannel,
			Description: "Manage where your trade notifications are posted",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: SubcommandRegister, Description: "Post notifications in this channel"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: SubcommandUnregister, Description: "Stop posting notifications in this channel"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: SubcommandPrimary, Description: "Make this channel the primary notification channel"},
			},
		},
	}
}
