package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// ClobClient reads public orderbook data from the Polymarket CLOB (Central
// Limit Order Book) API.
type ClobClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClobClient creates a new CLOB REST client.
//
// baseURL is the CLOB API root, e.g. "https://clob.polymarket.com".
func NewClobClient(baseURL string) *ClobClient {
	return &ClobClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBook returns the current orderbook for one outcome token.
func (c *ClobClient) GetBook(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error) {
	params := url.Values{}
	params.Set("token_id", tokenID)

	body, err := getJSON(ctx, c.httpClient, c.baseURL+"/book?"+params.Encode())
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}

	var book BookResponse
	if err := json.Unmarshal(body, &book); err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("polymarket/clob: decode book: %w", err)
	}
	if book.AssetID == "" {
		book.AssetID = tokenID
	}
	return book.ToSnapshot(), nil
}
