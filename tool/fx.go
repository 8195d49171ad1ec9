package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/agentchat/core"
	"github.com/hupe1980/agentchat/logging"
)

// defaultUpstreamTimeout bounds every tool upstream call. Timeouts surface
// through the tool's standard failure string, never as a hang.
const defaultUpstreamTimeout = 10 * time.Second

// defaultFrankfurterBaseURL is the public currency-rate service consumed by
// fx_convert. Plain GET with query parameters, no authentication.
const defaultFrankfurterBaseURL = "https://api.frankfurter.app"

// FXConvertOptions configures the fiat currency conversion tool.
type FXConvertOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// NewFXConvert returns the fx_convert tool converting fiat currency amounts
// via the Frankfurter API.
func NewFXConvert(optFns ...func(o *FXConvertOptions)) *FuncTool {
	opts := FXConvertOptions{
		BaseURL: defaultFrankfurterBaseURL,
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
			"amount": map[string]any{
				"type":        "number",
				"description": "Amount to convert, must be greater than 0.",
			},
			"from_currency": map[string]any{
				"type":        "string",
				"description": `Source currency code (e.g. "USD").`,
			},
			"to_currency": map[string]any{
				"type":        "string",
				"description": `Target currency code (e.g. "BRL").`,
			},
		},
		"required": []string{"amount", "from_currency", "to_currency"},
	}

	return NewFuncTool(
		"fx_convert",
		"Convert an amount between fiat currencies using current exchange rates.",
		parameters,
		opts.Logger,
		func(ctx context.Context, args map[string]any) string {
			core.MarkTool(ctx, "fx")

			amount := floatArg(args, "amount", 0)
			base := strings.ToUpper(stringArg(args, "from_currency"))
			target := strings.ToUpper(stringArg(args, "to_currency"))
			opts.Logger.Info("tool.fx_convert", "amount", amount, "from", base, "to", target)

			if amount <= 0 {
				return "Amount must be greater than 0."
			}
			if len(base) != 3 || len(target) != 3 {
				return "Currency codes must be 3 letters (e.g., USD, BRL)."
			}

			return fetchFXRate(ctx, client, opts.BaseURL, amount, base, target)
		},
	)
}

func fetchFXRate(ctx context.Context, client *http.Client, baseURL string, amount float64, base, target string) string {
	query := url.Values{
		"amount": []string{strconv.FormatFloat(amount, 'f', -1, 64)},
		"from":   []string{base},
		"to":     []string{target},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/latest?"+query.Encode(), nil)
	if err != nil {
		return fmt.Sprintf("FX API request failed: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("FX API request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("FX API request failed: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Sprintf("FX API request failed: %v", err)
	}

	value, ok := payload.Rates[target]
	if !ok {
		return fmt.Sprintf("Could not convert from %s to %s.", base, target)
	}
	return fmt.Sprintf("%.2f %s = %.2f %s", amount, base, value, target)
}
