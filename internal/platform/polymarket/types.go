package polymarket

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// EventURL returns the public Polymarket page for an event or market slug.
func EventURL(slug string) string {
	return "https://polymarket.com/event/" + slug
}

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or an unexpected shape: treat as false rather than failing
		// the whole payload.
		*f = false
		return nil
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string. Anything
// else decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexFloat(parseNumber(s))
		return nil
	}
	*f = 0
	return nil
}

// jsonList decodes Gamma's JSON-encoded string arrays such as
// "[\"Yes\",\"No\"]". Plain JSON arrays are accepted too. Elements are kept
// as strings; malformed payloads decode to an empty list.
type jsonList []string

func (l *jsonList) UnmarshalJSON(data []byte) error {
	*l = nil
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = []byte(encoded)
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(x))
		case nil:
			out = append(out, "null")
		default:
			b, _ := json.Marshal(x)
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}

// parseNumber parses a decimal string, returning 0 for anything that is not
// a finite number.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related markets.
type APIEvent struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Slug      string      `json:"slug"`
	Active    flexBool    `json:"active"`
	Closed    flexBool    `json:"closed"`
	Volume    flexFloat   `json:"volume"`
	Liquidity flexFloat   `json:"liquidity"`
	EndDate   string      `json:"endDate"`
	Markets   []APIMarket `json:"markets"`
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	ConditionID   string    `json:"conditionId"`
	Slug          string    `json:"slug"`
	Active        flexBool  `json:"active"`
	// Closed is nil when the flag is absent or null.
	Closed        *flexBool `json:"closed"`
	Outcomes      jsonList  `json:"outcomes"`      // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	OutcomePrices jsonList  `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	ClobTokenIDs  jsonList  `json:"clobTokenIds"`  // JSON-encoded: e.g. "[\"123\",\"456\"]"
	Volume        flexFloat `json:"volume"`
	Volume24hr    flexFloat `json:"volume24hr"`
	Liquidity     flexFloat `json:"liquidity"`
	EndDate       string    `json:"endDate"`
}

// IsOpen reports whether the market is tradable: active and explicitly not
// closed. A missing closed flag counts as not open.
func (m *APIMarket) IsOpen() bool {
	return bool(m.Active) && m.Closed != nil && !bool(*m.Closed)
}

// Prices returns the outcome prices as numbers. Unparsable entries become 0.
func (m *APIMarket) Prices() []float64 {
	prices := make([]float64, len(m.OutcomePrices))
	for i, p := range m.OutcomePrices {
		prices[i] = parseNumber(p)
	}
	return prices
}

// EndTime parses EndDate. It returns nil with no error when the date is
// absent.
func (m *APIMarket) EndTime() (*time.Time, error) {
	return parseTime(m.EndDate)
}

// ToSummary converts the market to the lightweight listing form. An
// unparsable end date is dropped rather than failing the conversion.
func (m *APIMarket) ToSummary() domain.MarketSummary {
	end, _ := m.EndTime()
	return domain.MarketSummary{
		ID:            m.ID,
		Question:      strings.TrimSpace(m.Question),
		Slug:          m.Slug,
		Outcomes:      nonNil([]string(m.Outcomes)),
		OutcomePrices: m.Prices(),
		Volume:        float64(m.Volume),
		Volume24h:     float64(m.Volume24hr),
		Liquidity:     float64(m.Liquidity),
		EndDate:       end,
		ClobTokenIDs:  nonNil([]string(m.ClobTokenIDs)),
		URL:           EventURL(m.Slug),
	}
}

// SearchResponse is the body of GET /public-search.
type SearchResponse struct {
	Events []APIEvent `json:"events"`
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// BookResponse is the body of GET /book on the CLOB API.
type BookResponse struct {
	Market    string      `json:"market"`
	AssetID   string      `json:"asset_id"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp string      `json:"timestamp"`
	Hash      string      `json:"hash"`
}

// BookLevel is a single bid/ask level in the CLOB orderbook.
type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// ToSnapshot converts a CLOB book to a domain.OrderbookSnapshot.
func (b *BookResponse) ToSnapshot() domain.OrderbookSnapshot {
	snap := domain.OrderbookSnapshot{
		AssetID: b.AssetID,
		Bids:    make([]domain.PriceLevel, 0, len(b.Bids)),
		Asks:    make([]domain.PriceLevel, 0, len(b.Asks)),
	}

	for _, lvl := range b.Bids {
		p, s := parseNumber(lvl.Price), parseNumber(lvl.Size)
		snap.Bids = append(snap.Bids, domain.PriceLevel{Price: p, Size: s})
		if p > snap.BestBid {
			snap.BestBid = p
		}
	}
	for _, lvl := range b.Asks {
		p, s := parseNumber(lvl.Price), parseNumber(lvl.Size)
		snap.Asks = append(snap.Asks, domain.PriceLevel{Price: p, Size: s})
		if snap.BestAsk == 0 || p < snap.BestAsk {
			snap.BestAsk = p
		}
	}

	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = (snap.BestBid + snap.BestAsk) / 2
	}

	// CLOB timestamps are unix milliseconds.
	if ts, err := strconv.ParseInt(b.Timestamp, 10, 64); err == nil {
		snap.Timestamp = time.UnixMilli(ts).UTC()
	} else if t, err := time.Parse(time.RFC3339, b.Timestamp); err == nil {
		snap.Timestamp = t
	} else {
		snap.Timestamp = time.Now().UTC()
	}

	return snap
}

func parseTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &time.ParseError{Layout: time.RFC3339, Value: raw, Message: ": unrecognized date"}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
