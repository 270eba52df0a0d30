package livedata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const alertTimeout = 10 * time.Second

// Alert is one active alert as reported by the alert API.
type Alert struct {
	ID       string `json:"id"`
	Resource string `json:"resource"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// AlertClient queries the external alert API.
type AlertClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAlertClient creates an AlertClient with a 10s timeout.
func NewAlertClient(baseURL, apiKey string) *AlertClient {
	return &AlertClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: alertTimeout},
	}
}

// Fetch returns the active alerts for an asset. Network and decode failures
// are logged and yield an empty list.
func (c *AlertClient) Fetch(ctx context.Context, assetURN string) []Alert {
	reqURL := c.baseURL + "?resource=" + url.QueryEscape(assetURN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Error().Err(err).Str("asset", assetURN).Msg("alert request build failed")
		return []Alert{}
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("asset", assetURN).Msg("alert fetch failed, returning empty list")
		return []Alert{}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("asset", assetURN).Msg("alert API returned non-OK status, returning empty list")
		return []Alert{}
	}

	var decoded struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Error().Err(err).Str("asset", assetURN).Msg("alert response decode failed, returning empty list")
		return []Alert{}
	}
	if decoded.Alerts == nil {
		return []Alert{}
	}
	return decoded.Alerts
}
