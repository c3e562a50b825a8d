// Package nightscout fetches glucose entries and meal treatments from a Nightscout server.
package nightscout

import (
	"context"
	"crypto/sha1" //nolint:gosec // Nightscout authenticates with the SHA-1 of the API secret
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
)

const (
	entriesPath    = "/api/v1/entries.json"
	treatmentsPath = "/api/v1/treatments.json"
	statusPath     = "/api/v1/status.json"

	entryTypeSensor = "sgv"
	entryTypeManual = "mbg"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// ErrUnauthorized is returned when the server rejects the credentials.
var ErrUnauthorized = errors.New("unauthorized: check NIGHTSCOUT_TOKEN or NIGHTSCOUT_API_SECRET")

// Config holds configuration for the Nightscout client.
type Config struct {
	BaseURL    string
	Token      string
	APISecret  string
	Timeout    time.Duration
	MaxRecords int
	HTTPClient *http.Client
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRecords: 2000,
	}
}

// Client talks to the Nightscout REST API.
type Client struct {
	baseURL    *url.URL
	token      string
	secretHash string
	maxRecords int
	httpClient *http.Client
}

// Status is the subset of the server status the dashboard displays.
type Status struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	ServerTime string `json:"serverTime"`
	Settings   struct {
		Units string `json:"units"`
	} `json:"settings"`
}

// New creates a new Nightscout client.
func New(config Config) (*Client, error) {
	def := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxRecords <= 0 {
		config.MaxRecords = def.MaxRecords
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("nightscout base URL is empty")
	}
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid nightscout URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid nightscout URL %q: scheme must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	c := &Client{
		baseURL:    base,
		token:      config.Token,
		maxRecords: config.MaxRecords,
		httpClient: httpClient,
	}
	if config.APISecret != "" {
		c.secretHash = HashSecret(config.APISecret)
	}
	return c, nil
}

// HashSecret returns the hex SHA-1 digest Nightscout expects in the api-secret header.
func HashSecret(secret string) string {
	sum := sha1.Sum([]byte(secret)) //nolint:gosec // protocol requirement
	return hex.EncodeToString(sum[:])
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchSensorReadings fetches continuous monitor entries inside the window.
func (c *Client) FetchSensorReadings(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error) {
	return c.fetchEntries(ctx, entryTypeSensor, startMs, endMs, dayKey)
}

// FetchManualReadings fetches finger-stick entries inside the window.
func (c *Client) FetchManualReadings(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error) {
	return c.fetchEntries(ctx, entryTypeManual, startMs, endMs, dayKey)
}

// FetchMealEvents fetches carbohydrate treatments inside the window. Like
// entries, it sends the ISO bounds together with the date prefix filter.
func (c *Client) FetchMealEvents(ctx context.Context, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error) {
	q := url.Values{}
	q.Set("find[created_at][$gte]", time.UnixMilli(startMs).UTC().Format(isoMillis))
	q.Set("find[created_at][$lte]", time.UnixMilli(endMs).UTC().Format(isoMillis))
	if dayKey != "" {
		q.Set("find[created_at][$regex]", "^"+datePrefixes(dayKey, startMs, endMs))
	}
	q.Set("find[carbs][$gt]", "0")
	q.Set("count", strconv.Itoa(c.maxRecords))

	var out []models.RemoteRecord
	if err := c.get(ctx, treatmentsPath, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch meal events for %s: %w", dayKey, err)
	}
	logger.Debug("fetched meal events", "day", dayKey, "count", len(out))
	return out, nil
}

// Status fetches the server status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.get(ctx, statusPath, url.Values{}, &st); err != nil {
		return nil, fmt.Errorf("failed to fetch status: %w", err)
	}
	return &st, nil
}

// fetchEntries sends both the numeric bounds and the date-string prefix filter;
// the server's numeric filtering alone is unreliable around midnight.
func (c *Client) fetchEntries(ctx context.Context, entryType string, startMs, endMs int64, dayKey string) ([]models.RemoteRecord, error) {
	q := url.Values{}
	q.Set("find[type]", entryType)
	q.Set("find[date][$gte]", strconv.FormatInt(startMs, 10))
	q.Set("find[date][$lte]", strconv.FormatInt(endMs, 10))
	if dayKey != "" {
		q.Set("find[dateString][$regex]", "^"+datePrefixes(dayKey, startMs, endMs))
	}
	q.Set("count", strconv.Itoa(c.maxRecords))

	var out []models.RemoteRecord
	if err := c.get(ctx, entriesPath, q, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch %s entries for %s: %w", entryType, dayKey, err)
	}
	logger.Debug("fetched entries", "type", entryType, "day", dayKey, "count", len(out))
	return out, nil
}

// datePrefixes builds a regex alternation of the local day key and the UTC
// dates covered by the window, so entries stamped in either zone match.
func datePrefixes(dayKey string, startMs, endMs int64) string {
	start := time.UnixMilli(startMs).UTC()
	end := time.UnixMilli(endMs).UTC()

	days := []string{dayKey}
	for d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC); !d.After(end); d = d.AddDate(0, 0, 1) {
		if key := d.Format("2006-01-02"); key != dayKey {
			days = append(days, key)
		}
	}
	if len(days) == 1 {
		return days[0]
	}
	return "(" + strings.Join(days, "|") + ")"
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if c.token != "" {
		q.Set("token", c.token)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.secretHash != "" {
		req.Header.Set("api-secret", c.secretHash)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
