// internal/engine/cache/cache_test.go
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-advisor/internal/common/logger"
	"property-advisor/internal/models"
)

func resultsFor(id string) []models.RecommendationResult {
	return []models.RecommendationResult{
		{Property: models.Property{ID: id}, Score: 0.9},
	}
}

func TestGetOrCompute_ComputesOnceThenHits(t *testing.T) {
	c := New(4, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	var calls int32
	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		atomic.AddInt32(&calls, 1)
		return resultsFor("prop-1"), nil
	}

	first, hit, err := c.GetOrCompute(ctx, "fp-1", fn)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, first, 1)

	second, hit, err := c.GetOrCompute(ctx, "fp-1", fn)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New(4, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	var calls int32
	failing := func(ctx context.Context) ([]models.RecommendationResult, error) {
		atomic.AddInt32(&calls, 1)
		return nil, fmt.Errorf("repository down")
	}

	_, _, err := c.GetOrCompute(ctx, "fp-1", failing)
	require.Error(t, err)

	_, hit, err := c.GetOrCompute(ctx, "fp-1", func(ctx context.Context) ([]models.RecommendationResult, error) {
		atomic.AddInt32(&calls, 1)
		return resultsFor("prop-1"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrCompute_SingleFlightUnderConcurrency(t *testing.T) {
	c := New(8, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	var calls int32
	slow := func(ctx context.Context) ([]models.RecommendationResult, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return resultsFor("prop-1"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, _, err := c.GetOrCompute(ctx, "fp-shared", slow)
			assert.NoError(t, err)
			assert.Len(t, results, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrCompute_DistinctFingerprintsComputeIndependently(t *testing.T) {
	c := New(8, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	var calls int32
	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		atomic.AddInt32(&calls, 1)
		return resultsFor("x"), nil
	}

	_, _, err := c.GetOrCompute(ctx, "fp-a", fn)
	require.NoError(t, err)
	_, _, err = c.GetOrCompute(ctx, "fp-b", fn)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLRUEviction(t *testing.T) {
	c := New(2, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	mk := func(id string) ComputeFunc {
		return func(ctx context.Context) ([]models.RecommendationResult, error) {
			return resultsFor(id), nil
		}
	}

	c.GetOrCompute(ctx, "fp-1", mk("p1"))
	c.GetOrCompute(ctx, "fp-2", mk("p2"))

	// Touch fp-1 so fp-2 is the least recently used.
	_, hit, _ := c.GetOrCompute(ctx, "fp-1", mk("p1"))
	assert.True(t, hit)

	c.GetOrCompute(ctx, "fp-3", mk("p3"))
	assert.Equal(t, 2, c.Len())

	_, hit, _ = c.GetOrCompute(ctx, "fp-1", mk("p1"))
	assert.True(t, hit, "recently used entry survived")
	_, hit, _ = c.GetOrCompute(ctx, "fp-2", mk("p2"))
	assert.False(t, hit, "least recently used entry was evicted")
}

func TestTTLExpiry(t *testing.T) {
	c := New(4, 30*time.Millisecond, logger.NewNoOpLogger())
	ctx := context.Background()

	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		return resultsFor("p1"), nil
	}

	c.GetOrCompute(ctx, "fp-1", fn)
	time.Sleep(60 * time.Millisecond)

	_, hit, err := c.GetOrCompute(ctx, "fp-1", fn)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSweep(t *testing.T) {
	c := New(4, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		return resultsFor("p1"), nil
	}
	c.GetOrCompute(ctx, "fp-1", fn)
	c.GetOrCompute(ctx, "fp-2", fn)

	assert.Equal(t, 0, c.Sweep(time.Now()))
	assert.Equal(t, 2, c.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, c.Len())
}

func TestInvalidate_Predicate(t *testing.T) {
	c := New(8, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		return resultsFor("p1"), nil
	}
	c.GetOrCompute(ctx, "client-a:fp", fn)
	c.GetOrCompute(ctx, "client-b:fp", fn)

	removed := c.Invalidate(func(fp string) bool { return fp == "client-a:fp" })
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidateAll(t *testing.T) {
	c := New(8, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	fn := func(ctx context.Context) ([]models.RecommendationResult, error) {
		return resultsFor("p1"), nil
	}
	c.GetOrCompute(ctx, "fp-1", fn)
	c.GetOrCompute(ctx, "fp-2", fn)

	c.InvalidateAll(ctx)
	assert.Equal(t, 0, c.Len())
}

// ==========================
// Fingerprints
// ==========================

func baseProfile() models.Profile {
	return models.Profile{
		ClientID:  "client-1",
		BudgetMin: 100000,
		BudgetMax: 150000,
		Currency:  "USD",
	}
}

func TestFingerprint_StableForEquivalentProfiles(t *testing.T) {
	a := baseProfile()
	a.PreferredZones = []string{"Equipetrol", "Urbari"}
	a.RequiredServices = []models.ServiceCategory{models.CategoryHealth, models.CategoryEducation}

	b := baseProfile()
	b.PreferredZones = []string{"Urbari", "Equipetrol"}
	b.RequiredServices = []models.ServiceCategory{models.CategoryEducation, models.CategoryHealth}

	assert.Equal(t, Fingerprint(a, 1, 1), Fingerprint(b, 1, 1))
}

func TestFingerprint_SensitiveToProfileChanges(t *testing.T) {
	a := baseProfile()
	b := baseProfile()
	b.BudgetMax = 160000

	assert.NotEqual(t, Fingerprint(a, 1, 1), Fingerprint(b, 1, 1))
}

func TestFingerprint_SensitiveToDatasetVersions(t *testing.T) {
	p := baseProfile()
	assert.NotEqual(t, Fingerprint(p, 1, 1), Fingerprint(p, 2, 1))
	assert.NotEqual(t, Fingerprint(p, 1, 1), Fingerprint(p, 1, 2))
}

func TestFingerprint_DoesNotMutateProfile(t *testing.T) {
	p := baseProfile()
	p.PreferredZones = []string{"Urbari", "Equipetrol"}

	Fingerprint(p, 1, 1)
	assert.Equal(t, []string{"Urbari", "Equipetrol"}, p.PreferredZones)
}
