package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clientguard/internal/cache"
	httperrors "github.com/dropDatabas3/clientguard/internal/http/errors"
	engine "github.com/dropDatabas3/clientguard/internal/policy"
)

// fakeCache implementa cache.Client sobre un map, contando accesos.
type fakeCache struct {
	data map[string]string
	gets int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.gets++
	v, ok := f.data[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.sets++
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func newTestService(c cache.Client) Service {
	return NewService(Deps{
		Cache:              c,
		CacheTTL:           time.Minute,
		IsDevelopment:      false,
		AccessTokenMinutes: 30,
	})
}

func TestListCatalogs(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	profiles := svc.ListProfiles(ctx)
	assert.Len(t, profiles, 5)

	presets := svc.ListPresets(ctx)
	assert.NotEmpty(t, presets)

	preset, err := svc.GetPreset(ctx, "spa-default")
	require.NoError(t, err)
	assert.Equal(t, engine.ProfileSpaPublic, preset.ProfileID)
}

func TestGetPreset_NotFound(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.GetPreset(context.Background(), "nope")
	require.Error(t, err)

	appErr, ok := err.(*httperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, httperrors.ErrPresetNotFound.Code, appErr.Code)
}

func TestCompose_AppliesOverrides(t *testing.T) {
	svc := newTestService(nil)

	ev, err := svc.Compose(context.Background(), "spa-default", map[string]any{
		"redirectUris": []any{"https://app.example.com/callback"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EvaluationID)
	assert.Equal(t, []string{"https://app.example.com/callback"}, ev.Effective.RedirectURIs)
	assert.Equal(t, []string{"https://app.example.com"}, ev.Effective.CORSOrigins)
	assert.Nil(t, ev.ValidationErrors)
	assert.Nil(t, ev.Findings)
}

func TestCompose_StripsLockedFields(t *testing.T) {
	svc := newTestService(nil)

	// spa-default bloquea clientType y pkceRequired
	ev, err := svc.Compose(context.Background(), "spa-default", map[string]any{
		"clientType":   "confidential",
		"pkceRequired": false,
	})
	require.NoError(t, err)

	assert.Equal(t, engine.ClientTypePublic, ev.Effective.ClientType)
	assert.True(t, ev.Effective.PKCERequired)
}

func TestCheck_ValidConfiguration(t *testing.T) {
	svc := newTestService(nil)

	ev, err := svc.Check(context.Background(), "spa-default", map[string]any{
		"redirectUris": []any{"https://app.example.com/callback"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EvaluationID)
	assert.True(t, ev.Valid())
	assert.Empty(t, ev.ValidationErrors)
	assert.Empty(t, ev.Findings)
}

func TestCheck_InvalidConfiguration(t *testing.T) {
	svc := newTestService(nil)

	// service-integration permite override de scopes; quitar "api" deja a
	// los password-grant scopes sin respaldo y dispara el validador.
	ev, err := svc.Check(context.Background(), "service-integration", map[string]any{
		"scopes": []any{"admin"},
	})
	require.NoError(t, err)

	assert.False(t, ev.Valid())
	assert.NotEmpty(t, ev.ValidationErrors)
}

func TestCheck_FindingsSortedBySeverity(t *testing.T) {
	// Tokens largos (warning) + password grant (deprecated) producen
	// severidades mezcladas.
	svc := NewService(Deps{
		IsDevelopment:      false,
		AccessTokenMinutes: 300,
	})

	ev, err := svc.Check(context.Background(), "service-integration", nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ev.Findings), 2)

	for i := 1; i < len(ev.Findings); i++ {
		prev := ev.Findings[i-1].Severity.Rank()
		cur := ev.Findings[i].Severity.Rank()
		assert.GreaterOrEqual(t, prev, cur, "findings deben ir de mayor a menor severidad")
	}
	assert.Equal(t, engine.SeverityWarning, ev.Findings[0].Severity)
	assert.Equal(t, engine.SeverityDeprecated, ev.Findings[len(ev.Findings)-1].Severity)
}

func TestCheck_UnknownPreset(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Check(context.Background(), "ghost", nil)
	require.Error(t, err)

	appErr, ok := err.(*httperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, httperrors.ErrPresetNotFound.Code, appErr.Code)
}

func TestCheck_UsesCache(t *testing.T) {
	fc := newFakeCache()
	svc := newTestService(fc)
	ctx := context.Background()

	overrides := map[string]any{
		"redirectUris": []any{"https://app.example.com/callback"},
	}

	first, err := svc.Check(ctx, "spa-default", overrides)
	require.NoError(t, err)
	require.Equal(t, 1, fc.sets)

	second, err := svc.Check(ctx, "spa-default", overrides)
	require.NoError(t, err)

	// Misma evaluación, evaluation_id fresco por llamada.
	assert.Equal(t, first.Effective, second.Effective)
	assert.NotEqual(t, first.EvaluationID, second.EvaluationID)
	assert.Equal(t, 1, fc.sets, "el hit no debe reescribir el cache")
}

func TestCheck_CacheKeyVariesWithOverrides(t *testing.T) {
	fc := newFakeCache()
	svc := newTestService(fc)
	ctx := context.Background()

	_, err := svc.Check(ctx, "spa-default", map[string]any{
		"redirectUris": []any{"https://a.example.com/cb"},
	})
	require.NoError(t, err)

	_, err = svc.Check(ctx, "spa-default", map[string]any{
		"redirectUris": []any{"https://b.example.com/cb"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, fc.sets, "overrides distintos no deben compartir entrada")
}

func TestCheck_MalformedOverridesDegrade(t *testing.T) {
	svc := newTestService(nil)

	// Tipos incorrectos degradan a "sin override": queda el default del preset.
	ev, err := svc.Check(context.Background(), "web-default", map[string]any{
		"redirectUris": "not-a-list",
		"grantTypes":   42,
	})
	require.NoError(t, err)

	preset, _ := engine.GetPreset("web-default")
	assert.Equal(t, preset.Defaults.RedirectURIs, ev.Effective.RedirectURIs)
}
