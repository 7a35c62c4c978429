// internal/storage/models/settings.go
package models

// TradeSettings are a user's persisted quick-trade presets and channel registrations.
type TradeSettings struct {
	BaseModel
	UserID string `json:"user_id"`

	MinQuickBuy    float64 `json:"min_quick_buy"`
	MediumQuickBuy float64 `json:"medium_quick_buy"`
	LargeQuickBuy  float64 `json:"large_quick_buy"`

	MinQuickSell    float64 `json:"min_quick_sell"`
	MediumQuickSell float64 `json:"medium_quick_sell"`
	LargeQuickSell  float64 `json:"large_quick_sell"`

	Channels       []string `json:"channels"`
	PrimaryChannel string   `json:"primary_channel"`
	// ChannelID is the single channel of older records, read when PrimaryChannel is empty.
	ChannelID string `json:"channel_id"`
}

// Clone returns a deep copy.
func (s *TradeSettings) Clone() *TradeSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.Channels = append([]string(nil), s.Channels...)
	return &out
}
