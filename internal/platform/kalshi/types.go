package kalshi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// MarketURL returns the public Kalshi page for an event.
func MarketURL(eventTicker string) string {
	return "https://kalshi.com/markets/" + eventTicker
}

// Dollars is a price quoted in dollars. Kalshi sends these as decimal
// strings ("0.4500"); bare numbers are accepted as well. The original text
// is kept so it can be passed through unchanged.
type Dollars string

func (d *Dollars) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = Dollars(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Dollars(n.String())
		return nil
	}
	*d = ""
	return nil
}

// Decimal parses the price. Empty or malformed values are zero.
func (d Dollars) Decimal() decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(string(d)))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// OrZero returns the raw value, or "0" when it is absent.
func (d Dollars) OrZero() string {
	if d == "" {
		return "0"
	}
	return string(d)
}

// flexFloat unmarshals from a JSON number or numeric string. Anything else
// decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// Event is a Kalshi event with its nested markets.
type Event struct {
	EventTicker       string   `json:"event_ticker"`
	SeriesTicker      string   `json:"series_ticker"`
	Title             string   `json:"title"`
	SubTitle          string   `json:"sub_title"`
	Category          string   `json:"category"`
	MutuallyExclusive bool     `json:"mutually_exclusive"`
	Markets           []Market `json:"markets"`
}

// ActiveMarkets returns the markets that are currently tradable.
func (e *Event) ActiveMarkets() []Market {
	out := make([]Market, 0, len(e.Markets))
	for _, m := range e.Markets {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}

// Market represents a market as returned by the Kalshi REST API.
type Market struct {
	Ticker                 string    `json:"ticker"`
	EventTicker            string    `json:"event_ticker"`
	Title                  string    `json:"title"`
	Subtitle               *string   `json:"subtitle"`
	YesSubTitle            *string   `json:"yes_sub_title"`
	NoSubTitle             string    `json:"no_sub_title"`
	Status                 string    `json:"status"` // "active", "open", "closed", "settled", ...
	LastPriceDollars       Dollars   `json:"last_price_dollars"`
	YesBidDollars          Dollars   `json:"yes_bid_dollars"`
	YesAskDollars          Dollars   `json:"yes_ask_dollars"`
	PreviousPriceDollars   Dollars   `json:"previous_price_dollars"`
	Volume                 flexFloat `json:"volume"`
	Volume24h              flexFloat `json:"volume_24h"`
	OpenInterest           flexFloat `json:"open_interest"`
	CloseTime              string    `json:"close_time"`
	ExpectedExpirationTime string    `json:"expected_expiration_time"`
}

// IsActive reports whether the market status is "active" or "open".
func (m *Market) IsActive() bool {
	return m.Status == "active" || m.Status == "open"
}

// Close returns the market's close time, falling back to the expected
// expiration time. It returns nil with no error when neither is set.
func (m *Market) Close() (*time.Time, error) {
	raw := m.CloseTime
	if raw == "" {
		raw = m.ExpectedExpirationTime
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("kalshi: parse close time %q: %w", raw, err)
	}
	return &t, nil
}

// EventsResponse is the body of GET /events.
type EventsResponse struct {
	Events []Event `json:"events"`
	Cursor string  `json:"cursor"`
}

// Orderbook holds resting bids on both sides of a Kalshi market.
type Orderbook struct {
	Ticker    string       `json:"ticker"`
	YesBids   []PriceLevel `json:"yes"`
	NoBids    []PriceLevel `json:"no"`
	Timestamp time.Time    `json:"-"`
}

// PriceLevel is a single price+quantity entry in the Kalshi orderbook.
type PriceLevel struct {
	Price    int64 `json:"price"`    // in cents (1-99)
	Quantity int64 `json:"quantity"` // number of contracts
}

// UnmarshalJSON accepts both the [price, quantity] pair the REST API sends
// and the object form.
func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("kalshi: price level: want 2 elements, got %d", len(pair))
		}
		p.Price, p.Quantity = pair[0], pair[1]
		return nil
	}
	type plain PriceLevel
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = PriceLevel(obj)
	return nil
}

// ToSnapshot converts the book to a domain.OrderbookSnapshot in probability
// units. A NO bid at p cents is a YES ask at 100-p cents.
func (o *Orderbook) ToSnapshot() domain.OrderbookSnapshot {
	snap := domain.OrderbookSnapshot{
		AssetID:   o.Ticker,
		Bids:      make([]domain.PriceLevel, 0, len(o.YesBids)),
		Asks:      make([]domain.PriceLevel, 0, len(o.NoBids)),
		Timestamp: o.Timestamp,
	}

	hundred := decimal.NewFromInt(100)
	toProb := func(cents int64) float64 {
		return decimal.NewFromInt(cents).Div(hundred).InexactFloat64()
	}

	for _, lvl := range o.YesBids {
		p := toProb(lvl.Price)
		snap.Bids = append(snap.Bids, domain.PriceLevel{Price: p, Size: float64(lvl.Quantity)})
		if p > snap.BestBid {
			snap.BestBid = p
		}
	}
	for _, lvl := range o.NoBids {
		p := toProb(100 - lvl.Price)
		snap.Asks = append(snap.Asks, domain.PriceLevel{Price: p, Size: float64(lvl.Quantity)})
		if snap.BestAsk == 0 || p < snap.BestAsk {
			snap.BestAsk = p
		}
	}

	if snap.BestBid > 0 && snap.BestAsk > 0 {
		snap.MidPrice = decimal.NewFromFloat(snap.BestBid).
			Add(decimal.NewFromFloat(snap.BestAsk)).
			Div(decimal.NewFromInt(2)).
			InexactFloat64()
	}
	return snap
}

// ErrorResponse represents a Kalshi API error response.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) String() string {
	code, msg := e.Code, e.Message
	if code == "" && msg == "" {
		code, msg = e.Error.Code, e.Error.Message
	}
	return fmt.Sprintf("%s (%s)", msg, code)
}
