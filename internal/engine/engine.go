// internal/engine/engine.go
package engine

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"property-advisor/internal/common/config"
	"property-advisor/internal/common/errors"
	"property-advisor/internal/common/logger"
	"property-advisor/internal/common/metrics"
	"property-advisor/internal/common/observability"
	"property-advisor/internal/engine/cache"
	"property-advisor/internal/engine/coverage"
	"property-advisor/internal/engine/geo"
	"property-advisor/internal/engine/scoring"
	"property-advisor/internal/models"
	"property-advisor/internal/repository"
)

// Engine orchestrates one recommendation request end to end: profile
// validation, candidate retrieval, parallel scoring, deterministic ranking
// and caching. The same profile against the same datasets always yields
// the same ranked list.
type Engine struct {
	cfg config.EngineConfig
	log logger.Logger
	obs *observability.Observability

	properties repository.PropertyRepository
	services   repository.ServiceRepository

	scorer      *scoring.Scorer
	evaluator   *coverage.Evaluator
	cache       *cache.Cache
	remoteStore cache.Store

	// index is published copy-and-swap; readers never lock.
	index atomic.Pointer[geo.SpatialIndex]

	propertyVersion atomic.Uint64
	serviceVersion  atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithObservability attaches OpenTelemetry request instrumentation.
func WithObservability(obs *observability.Observability) Option {
	return func(e *Engine) { e.obs = obs }
}

// WithCacheStore attaches a shared second-level cache store.
func WithCacheStore(s cache.Store) Option {
	return func(e *Engine) { e.remoteStore = s }
}

func New(cfg config.EngineConfig, properties repository.PropertyRepository, services repository.ServiceRepository, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		log:        log,
		properties: properties,
		services:   services,
		evaluator:  coverage.New(cfg.CoverageRadiiMeters, log),
		scorer: scoring.New(scoring.Config{
			Centroid:                    models.Coordinate{Latitude: cfg.CentroidLat, Longitude: cfg.CentroidLng},
			MaxConsideredDistanceMeters: cfg.MaxConsideredDistanceMeters,
			PriceDecayBand:              cfg.PriceDecayBand,
			ReservedScore:               cfg.ReservedAvailabilityScore,
			TieEpsilon:                  cfg.TieEpsilon,
		}, log),
	}
	for _, opt := range opts {
		opt(e)
	}

	cacheOpts := []cache.Option{}
	if e.remoteStore != nil {
		cacheOpts = append(cacheOpts, cache.WithRemoteStore(e.remoteStore))
	}
	e.cache = cache.New(cfg.CacheCapacity, cfg.CacheTTL, log, cacheOpts...)

	// An empty index until the first RefreshServices; every coverage query
	// against it simply finds nothing.
	e.index.Store(geo.BuildIndex(nil, cfg.GridCellDegrees))
	return e
}

// Recommend returns up to limit recommendations for the profile, ranked by
// descending overall score, skipping results below minScore. A limit of
// zero or less falls back to the configured maximum. An empty candidate
// set is a valid empty answer, not an error.
func (e *Engine) Recommend(ctx context.Context, profile models.Profile, limit int, minScore float64) ([]models.RecommendationResult, error) {
	start := time.Now()
	reqLog := e.log.WithFields(map[string]interface{}{
		"requestId": uuid.NewString(),
		"clientId":  profile.ClientID,
	})

	results, err := e.recommend(ctx, reqLog, profile, limit, minScore)

	status := "success"
	if err != nil {
		status = string(errors.CodeOf(err))
		if status == "" {
			status = "error"
		}
	}
	metrics.RecommendationsTotal.WithLabelValues(status).Inc()
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	if e.obs != nil {
		e.obs.RecordRequest(ctx, status)
		e.obs.RecordRequestDuration(ctx, time.Since(start), status)
	}
	return results, err
}

func (e *Engine) recommend(ctx context.Context, reqLog logger.Logger, profile models.Profile, limit int, minScore float64) ([]models.RecommendationResult, error) {
	if err := profile.Validate(); err != nil {
		return nil, errors.NewInvalidProfileError(err.Error())
	}

	// Profiles without an override inherit the configured split, so the
	// deployment can retune the default without touching clients.
	if profile.Weights == nil {
		profile.Weights = &models.Weights{
			Location:     e.cfg.Weights.Location,
			Price:        e.cfg.Weights.Price,
			Services:     e.cfg.Weights.Services,
			Features:     e.cfg.Weights.Features,
			Availability: e.cfg.Weights.Availability,
		}
	}

	// Weight validation and renormalization happen exactly once per
	// request, never per property.
	weights, err := scoring.NormalizeWeights(&profile)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}

	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}

	fp := cache.Fingerprint(profile, e.propertyVersion.Load(), e.serviceVersion.Load())

	// The cache holds the full ranked list; limit and minScore are applied
	// per request so differently shaped queries share one entry.
	ranked, hit, err := e.cache.GetOrCompute(ctx, fp, func(ctx context.Context) ([]models.RecommendationResult, error) {
		return e.computeRanked(ctx, reqLog, profile, weights)
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("recommend", e.cfg.RequestTimeout)
		}
		return nil, err
	}

	out := make([]models.RecommendationResult, 0, limit)
	for _, r := range ranked {
		if r.Score < minScore {
			break
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}

	reqLog.Info("recommendation served", map[string]interface{}{
		"cacheHit":   hit,
		"candidates": len(ranked),
		"returned":   len(out),
	})
	return out, nil
}

// computeRanked runs the full pipeline on a cache miss. The returned slice
// is complete and sorted; truncation belongs to the caller.
func (e *Engine) computeRanked(ctx context.Context, reqLog logger.Logger, profile models.Profile, weights models.Weights) ([]models.RecommendationResult, error) {
	hint := e.filterHint(profile)
	candidates, err := e.properties.ListCandidates(ctx, hint)
	if err != nil {
		var se *errors.StandardError
		if stderrors.As(err, &se) {
			return nil, err
		}
		return nil, errors.NewRepositoryError("list candidates", err)
	}
	if len(candidates) == 0 {
		reqLog.Info("no candidates for profile", nil)
		return []models.RecommendationResult{}, nil
	}

	scored, err := e.scoreAll(ctx, candidates, profile, weights)
	if err != nil {
		return nil, err
	}

	// Zero-score listings carry no signal for the client; they are dropped
	// before ranking, not ranked last.
	ranked := scored[:0]
	for _, r := range scored {
		if r.Score > 0 {
			ranked = append(ranked, r)
		}
	}

	eps := e.cfg.TieEpsilon
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoring.Less(&ranked[i], &ranked[j], eps)
	})

	reqLog.Debug("candidates ranked", map[string]interface{}{
		"scored": len(scored),
		"ranked": len(ranked),
	})
	return ranked, nil
}

// scoreAll fans the candidates out over a bounded worker pool. Order of
// the output is not meaningful; ranking restores determinism.
func (e *Engine) scoreAll(ctx context.Context, candidates []models.Property, profile models.Profile, weights models.Weights) ([]models.RecommendationResult, error) {
	idx := e.index.Load()

	batchSize := e.cfg.ScoringBatchSize
	if batchSize <= 0 {
		batchSize = 64
	}
	workers := e.cfg.ScoringWorkers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan []models.Property, workers)
	resultCh := make(chan []models.RecommendationResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				if ctx.Err() != nil {
					return
				}
				out := make([]models.RecommendationResult, 0, len(batch))
				for _, prop := range batch {
					var cov coverage.Result
					if prop.HasValidCoordinate() {
						cov = e.evaluator.Coverage(idx, *prop.Coordinate, profile.RequiredServices)
					}
					if res, ok := e.scorer.Score(prop, profile, weights, cov); ok {
						out = append(out, *res)
					}
				}
				resultCh <- out
			}
		}()
	}

	go func() {
		defer close(jobs)
		for start := 0; start < len(candidates); start += batchSize {
			end := start + batchSize
			if end > len(candidates) {
				end = len(candidates)
			}
			select {
			case jobs <- candidates[start:end]:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []models.RecommendationResult
	for batch := range resultCh {
		all = append(all, batch...)
	}
	if err := ctx.Err(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeoutError("score candidates", e.cfg.RequestTimeout)
		}
		return nil, err
	}

	metrics.PropertiesScored.Add(float64(len(all)))
	return all, nil
}

// filterHint widens the profile's budget by the decay band so listings
// that would still score positive are not pre-filtered away.
func (e *Engine) filterHint(profile models.Profile) repository.FilterHint {
	hint := repository.FilterHint{
		Zones:    profile.PreferredZones,
		Currency: profile.Currency,
		Type:     profile.PropertyType,
	}
	if profile.BudgetMin > 0 {
		hint.PriceMin = profile.BudgetMin * (1 - e.cfg.PriceDecayBand)
		if hint.PriceMin < 0 {
			hint.PriceMin = 0
		}
	}
	if profile.BudgetMax > 0 {
		hint.PriceMax = profile.BudgetMax * (1 + e.cfg.PriceDecayBand)
	}
	return hint
}

// RefreshServices reloads the service catalog, builds a fresh spatial
// index aside and publishes it atomically. In-flight requests keep
// reading the previous index; new requests see the new one. The cache is
// cleared because every cached coverage figure may have changed.
func (e *Engine) RefreshServices(ctx context.Context) error {
	services, err := e.services.ListServices(ctx)
	if err != nil {
		var se *errors.StandardError
		if stderrors.As(err, &se) {
			return err
		}
		return errors.NewRepositoryError("list services", err)
	}

	idx := geo.BuildIndex(services, e.cfg.GridCellDegrees)
	e.index.Store(idx)
	e.serviceVersion.Add(1)
	e.cache.InvalidateAll(ctx)

	metrics.IndexRebuilds.Inc()
	metrics.IndexedServices.Set(float64(idx.Count()))

	e.log.Info("spatial index rebuilt", map[string]interface{}{
		"services": idx.Count(),
		"skipped":  idx.Skipped(),
		"version":  e.serviceVersion.Load(),
	})
	return nil
}

// RefreshProperties signals that the property dataset changed. The next
// request recomputes against the new data; previously cached lists no
// longer match any fingerprint.
func (e *Engine) RefreshProperties(ctx context.Context) {
	e.propertyVersion.Add(1)
	e.cache.InvalidateAll(ctx)
	e.log.Info("property dataset version bumped", map[string]interface{}{
		"version": e.propertyVersion.Load(),
	})
}

// InvalidateCache drops every cached recommendation without touching the
// dataset versions.
func (e *Engine) InvalidateCache(ctx context.Context) {
	e.cache.InvalidateAll(ctx)
}

// CacheLen reports the current number of cached recommendation lists.
func (e *Engine) CacheLen() int { return e.cache.Len() }

// SweepCache evicts expired cache entries; meant for a periodic ticker.
func (e *Engine) SweepCache(now time.Time) int { return e.cache.Sweep(now) }

// IndexedServiceCount reports how many services the published index holds.
func (e *Engine) IndexedServiceCount() int { return e.index.Load().Count() }
