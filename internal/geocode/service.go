package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	cacheTTL     = 30 * time.Minute
	cacheCleanup = 10 * time.Minute
)

var _ Service = (*ServiceImpl)(nil)

// Service is the geocoding collaborator. It is invoked opportunistically to
// enrich items lacking a location; callers swallow failures so geocoding
// never blocks trip display.
type Service interface {
	Geocode(ctx context.Context, query string, proximity *types.GeoPoint) (*types.GeoPoint, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
}

func NewService(baseURL string, timeout time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      gocache.New(cacheTTL, cacheCleanup),
	}
}

// nominatimResult is the upstream response shape; coordinates arrive as
// strings.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-text query to a point. Results are cached; a
// proximity hint biases the search around the trip's destination.
func (s *ServiceImpl) Geocode(ctx context.Context, query string, proximity *types.GeoPoint) (*types.GeoPoint, error) {
	ctx, span := otel.Tracer("GeocodeService").Start(ctx, "Geocode")
	defer span.End()
	span.SetAttributes(attribute.String("geocode.query", query))

	if cached, found := s.cache.Get(query); found {
		span.SetAttributes(attribute.Bool("geocode.cache_hit", true))
		span.SetStatus(codes.Ok, "Cache hit")
		point := cached.(types.GeoPoint)
		return &point, nil
	}

	metrics.Get().GeocodeLookupsTotal.Add(ctx, 1)

	endpoint, err := s.buildURL(query, proximity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad geocode URL")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Request build failed")
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode request failed")
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("geocode request returned status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unexpected status")
		return nil, err
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Bad geocode response")
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		span.SetStatus(codes.Ok, "No match")
		return nil, fmt.Errorf("no geocode match for %q", query)
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		err := fmt.Errorf("invalid coordinates in geocode response for %q", query)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid coordinates")
		return nil, err
	}

	point := types.GeoPoint{Latitude: lat, Longitude: lon, Address: results[0].DisplayName}
	s.cache.Set(query, point, gocache.DefaultExpiration)

	s.logger.DebugContext(ctx, "Geocoded query",
		slog.String("query", query),
		slog.Float64("lat", lat),
		slog.Float64("lon", lon))
	span.SetStatus(codes.Ok, "Geocoded")
	return &point, nil
}

func (s *ServiceImpl) buildURL(query string, proximity *types.GeoPoint) (string, error) {
	u, err := url.Parse(s.baseURL + "/search")
	if err != nil {
		return "", fmt.Errorf("invalid geocode base URL: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if proximity != nil {
		// Soft bias: a viewbox around the hint without excluding results
		// outside it.
		params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			proximity.Longitude-0.5, proximity.Latitude+0.5,
			proximity.Longitude+0.5, proximity.Latitude-0.5))
		params.Set("bounded", "0")
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
