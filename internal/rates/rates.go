// Package rates resolves FX rate snapshots at expense-recording time.
//
// The settlement core itself never fetches rates: it consumes the
// snapshot stored on the expense row, or excludes the expense when the
// snapshot is missing. This package is the collaborator that produces
// those snapshots, with a TTL cache in front of whatever Source backs
// it so bursts of expense creation don't hammer a rate provider.
package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// ErrUnavailable signals that the source has no rate for the pair.
// Resolvers treat it as a soft miss: the expense is recorded without a
// snapshot and flows into the conversion-gap path downstream.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Source supplies the current conversion rate from one currency into
// another. Implementations are external (HTTP APIs, files, fixtures).
type Source interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Resolver caches Source lookups for a fixed TTL.
type Resolver struct {
	source Source
	cache  *gocache.Cache
}

// NewResolver wraps source with a TTL cache. Cached entries expire
// after ttl; expired entries are purged at twice that interval.
func NewResolver(source Source, ttl time.Duration) *Resolver {
	return &Resolver{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Snapshot returns the rate from one currency into another as a
// nullable decimal. A missing rate (ErrUnavailable) yields an invalid
// decimal and no error; any other source failure is returned as-is.
func (r *Resolver) Snapshot(ctx context.Context, from, to string) (decimal.NullDecimal, error) {
	if from == to {
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(1), Valid: true}, nil
	}

	key := from + "/" + to
	if cached, ok := r.cache.Get(key); ok {
		return cached.(decimal.NullDecimal), nil
	}

	rate, err := r.source.Rate(ctx, from, to)
	if errors.Is(err, ErrUnavailable) {
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to resolve rate %s: %w", key, err)
	}

	snapshot := decimal.NullDecimal{Decimal: rate, Valid: true}
	r.cache.SetDefault(key, snapshot)
	return snapshot, nil
}

// StaticSource serves rates from a fixed map keyed "FROM/TO". Useful
// for tests and offline development.
type StaticSource map[string]decimal.Decimal

func (s StaticSource) Rate(_ context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok := s[from+"/"+to]
	if !ok {
		return decimal.Decimal{}, ErrUnavailable
	}
	return rate, nil
}

// ParseStatic builds a StaticSource from a comma-separated list of
// "FROM/TO=rate" entries, e.g. "USD/EUR=0.9255,GBP/EUR=1.17". Currency
// codes are uppercased. An empty spec yields an empty source.
func ParseStatic(spec string) (StaticSource, error) {
	source := StaticSource{}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		pair, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid rate entry %q, want FROM/TO=rate", entry)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid rate in entry %q: %w", entry, err)
		}
		source[strings.ToUpper(strings.TrimSpace(pair))] = rate
	}
	return source, nil
}
