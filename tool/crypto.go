package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// defaultCoinGeckoBaseURL is the public crypto-price service consumed by
// crypto_convert. Plain GET with query parameters, no authentication.
const defaultCoinGeckoBaseURL = "https://api.coingecko.com"

// coinIDs maps common ticker symbols to CoinGecko provider ids. Symbols not
// listed here are lowercased and passed through as provider ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"MATIC": "polygon",
}

func resolveCoinID(coin string) string {
	c := strings.TrimSpace(coin)
	if c == "" {
		return ""
	}
	if id, ok := coinIDs[strings.ToUpper(c)]; ok {
		return id
	}
	return strings.ToLower(c)
}

// CryptoConvertOptions configures the crypto-asset pricing tool.
type CryptoConvertOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewCryptoConvert returns the crypto_convert tool fetching a crypto asset
// price and converting an amount into a target currency via CoinGecko.
func NewCryptoConvert(optFns ...func(o *CryptoConvertOptions)) *FuncTool {
	opts := CryptoConvertOptions{
		BaseURL: defaultCoinGeckoBaseURL,
		Timeout: defaultUpstreamTimeout,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coin": map[string]any{
				"type":        "string",
				"description": `Ticker symbol or CoinGecko id (e.g. "BTC" or "bitcoin").`,
			},
			"vs_currency": map[string]any{
				"type":        "string",
				"description": `Target currency code (e.g. "usd", "brl").`,
			},
			"amount": map[string]any{
				"type":        "number",
				"description": "Amount of the crypto asset. Defaults to 1.",
			},
		},
		"required": []string{"coin", "vs_currency"},
	}

	return NewFuncTool(
		"crypto_convert",
		"Fetch a crypto asset price and convert an amount into a target currency.",
		parameters,
		opts.Logger,
		func(ctx context.Context, args map[string]any) string {
			core.MarkTool(ctx, "crypto")

			coin := stringArg(args, "coin")
			coinID := resolveCoinID(coin)
			vs := strings.ToLower(stringArg(args, "vs_currency"))
			amount := floatArg(args, "amount", 1.0)
			opts.Logger.Info("tool.crypto_convert", "coin", coinID, "vs", vs, "amount", amount)

			if coinID == "" {
				return "Missing 'coin' (e.g., BTC, ETH)."
			}
			if len(vs) < 3 {
				return "Invalid 'vs_currency' (e.g., usd, brl)."
			}
			if amount <= 0 {
				return "Amount must be greater than 0."
			}

			return fetchCryptoPrice(ctx, client, opts.BaseURL, coin, coinID, vs, amount)
		},
	)
}

func fetchCryptoPrice(ctx context.Context, client *http.Client, baseURL, coin, coinID, vs string, amount float64) string {
	query := url.Values{
		"ids":           []string{coinID},
		"vs_currencies": []string{vs},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v3/simple/price?"+query.Encode(), nil)
	if err != nil {
		return fmt.Sprintf("CoinGecko request failed: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("CoinGecko request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("CoinGecko request failed: unexpected status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Sprintf("CoinGecko request failed: %v", err)
	}

	price, ok := payload[coinID][vs]
	if !ok {
		return fmt.Sprintf("Could not fetch price for '%s' in '%s'.", coin, strings.ToUpper(vs))
	}

	converted := price * amount
	display := strings.ToUpper(strings.TrimSpace(coin))
	return fmt.Sprintf("%.6g %s ≈ %.2f %s", amount, display, converted, strings.ToUpper(vs))
}
