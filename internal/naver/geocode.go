package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultGeocodeURL is the Naver Cloud geocode endpoint.
const DefaultGeocodeURL = "https://maps.apigw.ntruss.com/map-geocode/v2/geocode"

// GeocodeAddress is one geocode match.
type GeocodeAddress struct {
	RoadAddress    string     `json:"roadAddress"`
	JibunAddress   string     `json:"jibunAddress"`
	EnglishAddress string     `json:"englishAddress"`
	X              FlexString `json:"x"`
	Y              FlexString `json:"y"`
}

// Best returns the preferred address text: road, then jibun, then English.
func (a GeocodeAddress) Best() string {
	for _, s := range []string{a.RoadAddress, a.JibunAddress, a.EnglishAddress} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Coordinates parses x (lng) and y (lat).
func (a GeocodeAddress) Coordinates() (lat, lng float64, ok bool) {
	x, errX := strconv.ParseFloat(strings.TrimSpace(string(a.X)), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(string(a.Y)), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return y, x, true
}

// GeocodeResponse is the subset of the geocode payload the resolver uses.
type GeocodeResponse struct {
	Status    string           `json:"status"`
	Addresses []GeocodeAddress `json:"addresses"`
}

// GeocodeClient calls the geocode API.
type GeocodeClient struct {
	http         *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	logger       *slog.Logger
}

func NewGeocodeClient(httpClient *http.Client, baseURL, clientID, clientSecret string, logger *slog.Logger) *GeocodeClient {
	if baseURL == "" {
		baseURL = DefaultGeocodeURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeClient{http: httpClient, baseURL: baseURL, clientID: clientID, clientSecret: clientSecret, logger: logger}
}

// Configured reports whether credentials are present.
func (c *GeocodeClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Geocode looks up one query string.
func (c *GeocodeClient) Geocode(ctx context.Context, query string) (*GeocodeResponse, error) {
	headers := map[string]string{
		"X-NCP-APIGW-API-KEY-ID": c.clientID,
		"X-NCP-APIGW-API-KEY":    c.clientSecret,
	}
	raw, _, err := GetJSON(ctx, c.http, c.baseURL, url.Values{"query": {query}}, headers, c.logger.With("api", "geocode"))
	if err != nil {
		return nil, err
	}
	if err := validate(geocodeValidator, raw); err != nil {
		return nil, err
	}
	var out GeocodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return &out, nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(b)
	return nil
}
