package distance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/obs"
	"route-pool-service/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultORSBaseURL = "https://api.openrouteservice.org"
	defaultORSProfile = "driving-car"
)

// ORSOptions overrides provider defaults. Zero values keep the defaults.
type ORSOptions struct {
	BaseURL    string
	Profile    string
	RatePerSec float64
	Timeout    time.Duration
}

// ORSMatrixProvider implements TravelMatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent duration caching
//   - Client-side request throttling
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	cache   ports.DurationCache
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewORSMatrixProvider(
	apiKey string,
	cache ports.DurationCache,
	log *zap.Logger,
	opts ORSOptions,
) (*ORSMatrixProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &ORSMatrixProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultORSBaseURL,
		profile: defaultORSProfile,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     log,
	}
	if opts.BaseURL != "" {
		p.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Profile != "" {
		p.profile = opts.Profile
	}
	if opts.Timeout > 0 {
		p.session.Timeout = opts.Timeout
	}
	if opts.RatePerSec > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	return p, nil
}

// GetDurations returns travel seconds from origin to every destination.
// Cached entries are served first; only misses go to the API.
func (o *ORSMatrixProvider) GetDurations(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, o.log, "ors.GetDurations")(&err)

	if origin.Name == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]domain.Location, 0, len(destinations))
	for _, d := range destinations {
		if d.Name == "" || d.Name == origin.Name {
			continue
		}
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		destList = append(destList, d)
	}

	if len(destList) == 0 {
		return map[string]float64{}, nil
	}

	hits := make(map[string]float64)
	// Check persistent cache before issuing external API calls.
	if o.cache != nil {
		names := make([]string, len(destList))
		for i, d := range destList {
			names[i] = d.Name
		}
		hits, err = o.cache.GetMany(ctx, origin.Name, names)
		if err != nil {
			return nil, fmt.Errorf("ORS get duration cache: %w", err)
		}
	}

	misses := make([]domain.Location, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d.Name]; !ok {
			misses = append(misses, d)
		}
	}

	if len(misses) == 0 {
		return hits, nil
	}

	fetched, err := o.fetchMatrixRow(ctx, origin, misses)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row for %q: %w", origin.Name, err)
	}

	if o.cache != nil {
		if err := o.cache.PutMany(ctx, origin.Name, fetched); err != nil {
			o.log.Warn("duration cache write failed", zap.String("origin", origin.Name), zap.Error(err))
		}
	}

	out := make(map[string]float64, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}
