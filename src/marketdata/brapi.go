package marketdata

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/optionsops/options-bridge/src/bridgemodels"
)

const brapiDefaultBaseURL = "https://brapi.dev/api"

// BrapiProvider fetches underlying quotes from brapi.dev. brapi exposes no
// B3 options endpoints, so option premiums are approximated with
// Black-Scholes over the underlying quote; premium-based consumers keep
// working end to end on synthetic values.
type BrapiProvider struct {
	BaseURL string
	APIKey  string

	// Annualized risk-free rate and volatility proxies for the synthetic
	// option pricing
	RiskFreeRate float64
	Volatility   float64

	client *http.Client
	nowFn  func() time.Time
}

func NewBrapiProvider(apiKey string) *BrapiProvider {
	return &BrapiProvider{
		BaseURL:      brapiDefaultBaseURL,
		APIKey:       apiKey,
		RiskFreeRate: 0.11,
		Volatility:   0.35,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		nowFn: time.Now,
	}
}

func (p *BrapiProvider) Name() string {
	return "brapi"
}

type brapiQuoteResult struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	Close              *float64 `json:"close"`
	RegularMarketVol   *float64 `json:"regularMarketVolume"`
}

type brapiQuoteResponse struct {
	Results []brapiQuoteResult `json:"results"`
}

func (p *BrapiProvider) GetQuote(symbol bridgemodels.StockSymbol) (*Quote, error) {
	normalized := strings.ToUpper(string(symbol))

	requestURL := fmt.Sprintf("%s/quote/%s", strings.TrimRight(p.BaseURL, "/"), url.PathEscape(normalized))

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("BrapiProvider.GetQuote: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	if p.APIKey != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", p.APIKey))
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("BrapiProvider.GetQuote: failed to fetch quote: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("BrapiProvider.GetQuote: failed to fetch quote, http code %v", res.Status)
	}

	var dto brapiQuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("BrapiProvider.GetQuote: failed to decode json: %w", err)
	}

	if len(dto.Results) == 0 {
		return nil, &UnavailableError{Symbol: normalized, Reason: "no results from brapi"}
	}

	result := dto.Results[0]

	price := result.RegularMarketPrice
	if price == nil {
		price = result.Close
	}

	quoteSymbol := bridgemodels.StockSymbol(result.Symbol)
	if quoteSymbol == "" {
		quoteSymbol = bridgemodels.StockSymbol(normalized)
	}

	return &Quote{
		Symbol:       quoteSymbol,
		CurrentPrice: price,
		Volume:       result.RegularMarketVol,
		Timestamp:    p.nowFn().UTC(),
		Source:       SourceFallback,
	}, nil
}

func (p *BrapiProvider) GetOptionQuote(symbol bridgemodels.StockSymbol, strike float64, expiration time.Time, optionType bridgemodels.OptionType) (*OptionQuote, error) {
	underlying, err := p.GetQuote(symbol)
	if err != nil {
		return nil, fmt.Errorf("BrapiProvider.GetOptionQuote: %w", err)
	}

	if underlying.CurrentPrice == nil {
		return nil, &UnavailableError{Symbol: string(symbol), Reason: "no underlying price to approximate option premium"}
	}

	spot := *underlying.CurrentPrice
	yearsToExpiration := p.yearsToExpiration(expiration)

	premium, greeks := blackScholes(spot, strike, p.RiskFreeRate, p.Volatility, yearsToExpiration, optionType)

	// Synthetic spread around the model premium: 2% half-spread, min 0.01
	half := math.Max(0.01, 0.02*premium)
	bid := math.Max(0, premium-half)
	ask := premium + half

	return &OptionQuote{
		Symbol:          underlying.Symbol,
		Strike:          strike,
		OptionType:      optionType,
		Expiration:      expiration.Format("2006-01-02"),
		Premium:         roundPtr(premium),
		Bid:             roundPtr(bid),
		Ask:             roundPtr(ask),
		UnderlyingPrice: underlying.CurrentPrice,
		Greeks:          greeks,
		Timestamp:       p.nowFn().UTC(),
		Source:          SourceFallback,
	}, nil
}

func (p *BrapiProvider) HealthCheck() bool {
	if _, err := p.GetQuote("BBAS3"); err != nil {
		return false
	}

	return true
}

func (p *BrapiProvider) yearsToExpiration(expiration time.Time) float64 {
	days := expiration.Sub(p.nowFn()).Hours() / 24
	if days < 1 {
		days = 1
	}

	// trading days per year
	return days / 252.0
}

// blackScholes prices a European option and its greeks. Degenerate inputs
// collapse to intrinsic value.
func blackScholes(spot, strike, riskFree, sigma, years float64, optionType bridgemodels.OptionType) (float64, *Greeks) {
	if years <= 0 || sigma <= 0 || spot <= 0 || strike <= 0 {
		if optionType == bridgemodels.OptionTypeCall {
			return math.Max(0, spot-strike), nil
		}

		return math.Max(0, strike-spot), nil
	}

	sqrtT := math.Sqrt(years)
	d1 := (math.Log(spot/strike) + (riskFree+0.5*sigma*sigma)*years) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	nd1 := 0.5 * (1 + math.Erf(d1/math.Sqrt2))
	nd2 := 0.5 * (1 + math.Erf(d2/math.Sqrt2))
	density1 := math.Exp(-0.5*d1*d1) / math.Sqrt(2*math.Pi)

	discount := math.Exp(-riskFree * years)

	var price, delta, theta, rho float64
	if optionType == bridgemodels.OptionTypeCall {
		price = spot*nd1 - strike*discount*nd2
		delta = nd1
		theta = (-(spot*density1*sigma)/(2*sqrtT) - riskFree*strike*discount*nd2) / 365
		rho = strike * years * discount * nd2 / 100
	} else {
		price = strike*discount*(1-nd2) - spot*(1-nd1)
		delta = nd1 - 1
		theta = (-(spot*density1*sigma)/(2*sqrtT) + riskFree*strike*discount*(1-nd2)) / 365
		rho = -strike * years * discount * (1 - nd2) / 100
	}

	greeks := &Greeks{
		Delta: delta,
		Gamma: density1 / (spot * sigma * sqrtT),
		Theta: theta,
		Vega:  spot * density1 * sqrtT / 100, // per 1% vol change
		Rho:   rho,
	}

	return price, greeks
}

func roundPtr(value float64) *float64 {
	rounded := math.Round(value*10000) / 10000
	return &rounded
}
