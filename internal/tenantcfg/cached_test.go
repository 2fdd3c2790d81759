package tenantcfg

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scimgate/pkg/scimerr"
)

func testDefaults() Defaults {
	return Defaults{
		EntitlementDefinitions: builtinEntitlementDefinitions,
		RateLimitCreate:        10,
		RateLimitRead:          100,
		MaxResultsPerPage:      100,
		DefaultPageSize:        100,
	}
}

func newTestStore(t *testing.T) (*CachedStore, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	cs := NewCachedStore(NewMemoryStore(), testDefaults(), 30*time.Second, zap.NewNop().Sugar())
	cs.clock = clock
	return cs, clock
}

func TestGetCreatesDefaultOnFirstAccess(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	cfg, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", cfg.TenantID)
	assert.Equal(t, []string{"User", "Group", "Entitlement"}, cfg.EnabledResourceTypes)
	assert.True(t, cfg.ValidationRules.StrictMode)
	assert.Equal(t, []string{"userName"}, cfg.UserAttributes.Required)

	// The default must have been persisted, not only cached.
	doc, err := cs.backend.Load(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", doc["server_id"])
}

func TestGetRejectsEmptyTenantID(t *testing.T) {
	cs, _ := newTestStore(t)

	_, err := cs.Get(context.Background(), "")
	se, ok := scimerr.As(err)
	require.True(t, ok)
	assert.Equal(t, scimerr.KindInvalidTenantID, se.Kind)

	err = cs.Update(context.Background(), "", map[string]any{})
	_, ok = scimerr.As(err)
	assert.True(t, ok)
}

func TestGetServesFromCacheWithinWindow(t *testing.T) {
	cs, clock := newTestStore(t)
	ctx := context.Background()

	first, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)

	// Write to the backend behind the cache's back.
	doc, _ := cs.backend.Load(ctx, "tenant-a")
	doc["name"] = "renamed"
	require.NoError(t, cs.backend.Save(ctx, "tenant-a", doc))

	clock.Advance(10 * time.Second)
	cached, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, first.Name, cached.Name)

	clock.Advance(30 * time.Second)
	reloaded, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Name)
}

func TestUpdateMergesAndInvalidates(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	_, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)

	err = cs.Update(ctx, "tenant-a", map[string]any{
		"validation_rules": map[string]any{"allow_unknown_attributes": true},
		"custom_note":      "kept",
	})
	require.NoError(t, err)

	// Visible immediately: the update invalidated the cache entry.
	cfg, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	assert.True(t, cfg.ValidationRules.AllowUnknownAttributes)
	assert.True(t, cfg.ValidationRules.StrictMode, "untouched rule survives the merge")
	assert.Equal(t, "kept", cfg.Raw()["custom_note"])
}

func TestUpdateOnUnseenTenantCreatesDefaultFirst(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	err := cs.Update(ctx, "fresh", map[string]any{"name": "custom"})
	require.NoError(t, err)

	cfg, err := cs.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Name)
	assert.Equal(t, []string{"userName"}, cfg.UserAttributes.Required)
}

func TestConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := []string{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7"}
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			err := cs.Update(ctx, "tenant-a", map[string]any{
				"custom_attributes": map[string]any{k: map[string]any{"type": "string"}},
			})
			assert.NoError(t, err)
		}(k)
	}
	wg.Wait()

	cs.Invalidate("tenant-a")
	cfg, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	attrs := cfg.Raw()["custom_attributes"].(map[string]any)
	for _, k := range keys {
		assert.Contains(t, attrs, k)
	}
}

func TestConvenienceAccessors(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	rules, err := cs.ValidationRules(ctx, "tenant-a")
	require.NoError(t, err)
	assert.True(t, rules.ValidateRequiredFields)

	limits, err := cs.RateLimits(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 10, limits["create"])
	assert.Equal(t, 100, limits["read"])

	types, err := cs.EnabledResourceTypes(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Group", "Entitlement"}, types)
}

func TestTenantConfigsAreIsolated(t *testing.T) {
	cs, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, cs.Update(ctx, "tenant-a", map[string]any{
		"entitlement_types": []any{map[string]any{
			"name": "Regions", "type": "project_based",
			"canonical_values": []any{"EMEA", "APAC"}, "multi_valued": false,
		}},
	}))

	a, err := cs.Get(ctx, "tenant-a")
	require.NoError(t, err)
	b, err := cs.Get(ctx, "tenant-b")
	require.NoError(t, err)

	require.Len(t, a.EntitlementTypes, 1)
	assert.Equal(t, []string{"EMEA", "APAC"}, a.EntitlementTypes[0].CanonicalValues)
	assert.Len(t, b.EntitlementTypes, len(builtinEntitlementDefinitions))
}
