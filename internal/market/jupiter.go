// internal/market/jupiter.go
package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type jupiterPriceResponse struct {
	Data map[string]*struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Price string `json:"price"`
	} `json:"data"`
}

// JupiterPrice returns the USD price of a Solana mint.
func (c *Client) JupiterPrice(ctx context.Context, mint string) (float64, error) {
	endpoint := c.jupiterURL + "?ids=" + url.QueryEscape(mint)

	var response jupiterPriceResponse
	if err := c.getJSON(ctx, "jupiter", endpoint, &response); err != nil {
		return 0, fmt.Errorf("failed to get jupiter price: %w", err)
	}

	entry, ok := response.Data[mint]
	if !ok || entry == nil {
		return 0, fmt.Errorf("no jupiter price for %s", mint)
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid jupiter price %q: %w", entry.Price, err)
	}
	return price, nil
}
