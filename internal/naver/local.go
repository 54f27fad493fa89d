package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultLocalSearchURL is the Naver local-search endpoint.
const DefaultLocalSearchURL = "https://openapi.naver.com/v1/search/local.json"

// LocalItem is one local-search candidate.
type LocalItem struct {
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Telephone   string     `json:"telephone"`
	Address     string     `json:"address"`
	RoadAddress string     `json:"roadAddress"`
	MapX        FlexString `json:"mapx"`
	MapY        FlexString `json:"mapy"`
}

var reTags = regexp.MustCompile(`<[^>]*>`)

// PlainTitle returns the title without markup.
func (it LocalItem) PlainTitle() string {
	return reTags.ReplaceAllString(it.Title, "")
}

// Coordinates converts mapx/mapy to WGS84. Values are scaled by 1e7 in the
// current API; small values are taken as plain degrees.
func (it LocalItem) Coordinates() (lat, lng float64, ok bool) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(string(it.MapX)), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(string(it.MapY)), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	if math.Abs(x) > 1000 {
		x /= 1e7
	}
	if math.Abs(y) > 1000 {
		y /= 1e7
	}
	return y, x, true
}

// LocalSearchResponse is the subset of the local-search payload we read.
type LocalSearchResponse struct {
	Total int         `json:"total"`
	Items []LocalItem `json:"items"`
}

// LocalSearchClient calls the local-search API.
type LocalSearchClient struct {
	http         *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	logger       *slog.Logger
}

func NewLocalSearchClient(httpClient *http.Client, baseURL, clientID, clientSecret string, logger *slog.Logger) *LocalSearchClient {
	if baseURL == "" {
		baseURL = DefaultLocalSearchURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSearchClient{http: httpClient, baseURL: baseURL, clientID: clientID, clientSecret: clientSecret, logger: logger}
}

// Configured reports whether credentials are present.
func (c *LocalSearchClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Search runs one query; display is clamped to 1..10.
func (c *LocalSearchClient) Search(ctx context.Context, query string, display int) (*LocalSearchResponse, error) {
	display = min(max(display, 1), 10)
	params := url.Values{
		"query":   {query},
		"display": {strconv.Itoa(display)},
		"start":   {"1"},
		"sort":    {"random"},
	}
	headers := map[string]string{
		"X-Naver-Client-Id":     c.clientID,
		"X-Naver-Client-Secret": c.clientSecret,
	}
	raw, _, err := GetJSON(ctx, c.http, c.baseURL, params, headers, c.logger.With("api", "local"))
	if err != nil {
		return nil, err
	}
	if err := validate(localSearchValidator, raw); err != nil {
		return nil, err
	}
	var out LocalSearchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode local search response: %w", err)
	}
	return &out, nil
}
