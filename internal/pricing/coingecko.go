package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Symbols CoinGecko does not accept verbatim as ids. Anything not in
// this table is passed through lower-cased, which matches how the ids
// work for most listed coins.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"BNB":   "binancecoin",
}

// CoinGecko fetches spot prices from the CoinGecko simple/price API.
type CoinGecko struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGecko builds a client with the given request timeout. An
// empty baseURL uses the public API.
func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinGecko{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Quotes requests USD prices for all symbols in one call. Symbols the
// API does not know are missing from the result, not errors.
func (c *CoinGecko) Quotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	ids := make([]string, 0, len(symbols))
	bySymbol := make(map[string]string, len(symbols)) // coin id -> symbol
	for _, sym := range symbols {
		id := coinID(sym)
		ids = append(ids, id)
		bySymbol[id] = strings.ToUpper(sym)
	}

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.BaseURL, url.QueryEscape(strings.Join(ids, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode)
	}

	var parsed map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("coingecko decode: %w", err)
	}

	out := make(map[string]float64, len(parsed))
	for id, q := range parsed {
		sym, ok := bySymbol[id]
		if !ok {
			continue
		}
		out[sym] = q.USD
	}
	return out, nil
}

func coinID(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := coinIDs[sym]; ok {
		return id
	}
	return strings.ToLower(sym)
}

var _ QuoteProvider = (*CoinGecko)(nil)
