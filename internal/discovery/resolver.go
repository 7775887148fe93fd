// Package discovery resolves the assets a home domain issues from its
// published stellar.toml.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// WellKnownPath is where a home domain publishes its stellar.toml.
const WellKnownPath = "/.well-known/stellar.toml"

// StatusLive marks a currency as in circulation.
const StatusLive = "live"

const maxTOMLBytes = 100 << 10

var (
	// ErrNoStellarTOML is returned when the domain serves no stellar.toml.
	ErrNoStellarTOML = errors.New("stellar.toml not found")
	// ErrInvalidDomain is returned for an empty home domain.
	ErrInvalidDomain = errors.New("invalid home domain")
)

// AssetCache stores resolved assets per home domain.
// Get returns storage.ErrNotFound on a miss.
type AssetCache interface {
	Get(ctx context.Context, homeDomain string) ([]domain.IssuedAssetRef, error)
	Set(ctx context.Context, homeDomain string, assets []domain.IssuedAssetRef) error
}

// Resolver fetches and parses stellar.toml files.
type Resolver struct {
	client *http.Client
	scheme string
	cache  AssetCache
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithScheme overrides the URL scheme ("https" by default).
func WithScheme(scheme string) Option {
	return func(r *Resolver) { r.scheme = scheme }
}

// WithCache enables caching of resolved assets.
func WithCache(c AssetCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// NewResolver creates a Resolver.
func NewResolver(logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		client: &http.Client{Timeout: 10 * time.Second},
		scheme: "https",
		logger: logger.Named("discovery"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the live assets issued by homeDomain.
// On failure it returns an empty list and the error.
func (r *Resolver) Resolve(ctx context.Context, homeDomain string) ([]domain.IssuedAssetRef, error) {
	homeDomain = strings.TrimSpace(strings.ToLower(homeDomain))
	if homeDomain == "" {
		return nil, ErrInvalidDomain
	}

	if r.cache != nil {
		assets, err := r.cache.Get(ctx, homeDomain)
		if err == nil {
			r.logger.Debug("cache hit", zap.String("domain", homeDomain), zap.Int("assets", len(assets)))
			return assets, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("cache get failed", zap.String("domain", homeDomain), zap.Error(err))
		}
	}

	body, err := r.fetch(ctx, homeDomain)
	if err != nil {
		return nil, err
	}
	assets, err := ParseStellarTOML(body)
	if err != nil {
		return nil, fmt.Errorf("parse stellar.toml for %s: %w", homeDomain, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, homeDomain, assets); err != nil {
			r.logger.Warn("cache set failed", zap.String("domain", homeDomain), zap.Error(err))
		}
	}
	r.logger.Info("resolved domain", zap.String("domain", homeDomain), zap.Int("assets", len(assets)))
	return assets, nil
}

// ResolveAll resolves every domain and returns the de-duplicated union of
// their assets in first-seen order. A failing domain is logged and skipped;
// its error is returned alongside the partial result.
func (r *Resolver) ResolveAll(ctx context.Context, domains []string) ([]domain.IssuedAssetRef, []error) {
	var (
		out  []domain.IssuedAssetRef
		errs []error
		seen = make(map[domain.AssetKey]struct{})
	)
	for _, d := range domains {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		assets, err := r.Resolve(ctx, d)
		if err != nil {
			r.logger.Warn("resolve failed", zap.String("domain", d), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", d, err))
			continue
		}
		for _, a := range assets {
			key := a.Asset().Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, a)
		}
	}
	return out, errs
}

func (r *Resolver) fetch(ctx context.Context, homeDomain string) ([]byte, error) {
	url := r.scheme + "://" + homeDomain + WellKnownPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", homeDomain, ErrNoStellarTOML)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTOMLBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

type stellarTOML struct {
	Currencies []currency `toml:"CURRENCIES"`
}

type currency struct {
	Code   string `toml:"code"`
	Issuer string `toml:"issuer"`
	Status string `toml:"status"`
}

// ParseStellarTOML extracts currencies that carry a code, an issuer and
// status "live".
func ParseStellarTOML(data []byte) ([]domain.IssuedAssetRef, error) {
	var doc stellarTOML
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}

	assets := make([]domain.IssuedAssetRef, 0, len(doc.Currencies))
	for _, c := range doc.Currencies {
		if c.Code == "" || c.Issuer == "" || c.Status != StatusLive {
			continue
		}
		assets = append(assets, domain.IssuedAssetRef{Code: c.Code, Issuer: c.Issuer})
	}
	return assets, nil
}
