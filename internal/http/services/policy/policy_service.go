// Package policy provee el service del API de policy: orquesta el engine
// puro (catálogos, composición, validación, linting) agregando lo que el
// engine deliberadamente no hace: filtrado de campos locked, cache,
// colapso de llamadas concurrentes idénticas, métricas y logging.
package policy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/clientguard/internal/cache"
	httpx "github.com/dropDatabas3/clientguard/internal/http"
	httperrors "github.com/dropDatabas3/clientguard/internal/http/errors"
	"github.com/dropDatabas3/clientguard/internal/observability/logger"
	engine "github.com/dropDatabas3/clientguard/internal/policy"
)

// Evaluation es el resultado de evaluar overrides contra un preset.
// Compose deja ValidationErrors y Findings en nil; Check los completa.
type Evaluation struct {
	EvaluationID     string
	Effective        engine.EffectiveConfig
	ValidationErrors []engine.ValidationError
	Findings         []engine.Finding
}

// Valid reporta si la configuración puede guardarse.
func (e *Evaluation) Valid() bool { return len(e.ValidationErrors) == 0 }

// Service define las operaciones del API de policy.
type Service interface {
	ListProfiles(ctx context.Context) []engine.ProfileRule
	ListPresets(ctx context.Context) []engine.PresetDefinition
	GetPreset(ctx context.Context, presetID string) (engine.PresetDefinition, error)
	Compose(ctx context.Context, presetID string, overrides map[string]any) (*Evaluation, error)
	Check(ctx context.Context, presetID string, overrides map[string]any) (*Evaluation, error)
}

// Deps dependencias inyectadas al service.
type Deps struct {
	Cache    cache.Client  // opcional; nil deshabilita memoización
	CacheTTL time.Duration // TTL de evaluaciones cacheadas

	// Contexto de linting, viene de la configuración del deployment.
	IsDevelopment      bool
	AccessTokenMinutes int
}

type policyService struct {
	deps Deps
	sf   singleflight.Group
}

// NewService crea el service de policy.
func NewService(deps Deps) Service {
	return &policyService{deps: deps}
}

func (s *policyService) ListProfiles(ctx context.Context) []engine.ProfileRule {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("policy"),
		logger.Op("ListProfiles"),
	)

	profiles := engine.ListProfiles()
	log.Debug("profiles listed", logger.Count(len(profiles)))
	return profiles
}

func (s *policyService) ListPresets(ctx context.Context) []engine.PresetDefinition {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("policy"),
		logger.Op("ListPresets"),
	)

	presets := engine.ListPresets()
	log.Debug("presets listed", logger.Count(len(presets)))
	return presets
}

func (s *policyService) GetPreset(ctx context.Context, presetID string) (engine.PresetDefinition, error) {
	preset, ok := engine.GetPreset(presetID)
	if !ok {
		return engine.PresetDefinition{}, httperrors.ErrPresetNotFound.WithDetail(presetID)
	}
	return preset, nil
}

func (s *policyService) Compose(ctx context.Context, presetID string, overrides map[string]any) (*Evaluation, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("policy"),
		logger.Op("Compose"),
		logger.PresetID(presetID),
	)

	preset, ok := engine.GetPreset(presetID)
	if !ok {
		return nil, httperrors.ErrPresetNotFound.WithDetail(presetID)
	}

	ov := engine.FilterLocked(preset, engine.ParseOverrides(overrides))
	effective := engine.Compose(preset, ov)

	ev := &Evaluation{
		EvaluationID: uuid.NewString(),
		Effective:    effective,
	}

	log.Debug("configuration composed", logger.EvaluationID(ev.EvaluationID))
	return ev, nil
}

func (s *policyService) Check(ctx context.Context, presetID string, overrides map[string]any) (*Evaluation, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("policy"),
		logger.Op("Check"),
		logger.PresetID(presetID),
	)

	preset, ok := engine.GetPreset(presetID)
	if !ok {
		return nil, httperrors.ErrPresetNotFound.WithDetail(presetID)
	}

	ov := engine.FilterLocked(preset, engine.ParseOverrides(overrides))
	key := s.evaluationKey(preset, ov)

	// Cache: la evaluación es determinística por (preset, versión,
	// overrides filtrados, contexto de lint), solo el evaluation_id es
	// fresco por llamada.
	if cached, ok := s.cachedEvaluation(ctx, key); ok {
		httpx.RecordComposeCache(true)
		cached.EvaluationID = uuid.NewString()
		s.recordCheck(presetID, cached)
		log.Debug("evaluation served from cache", logger.EvaluationID(cached.EvaluationID))
		return cached, nil
	}
	httpx.RecordComposeCache(false)

	// Singleflight colapsa checks idénticos concurrentes (los bursts de
	// un admin UI que valida mientras el usuario tipea).
	v, err, _ := s.sf.Do(key, func() (any, error) {
		effective := engine.Compose(preset, ov)
		verrs := engine.Validate(effective)
		findings := engine.Analyze(effective, engine.LintContext{
			IsDevelopment:      s.deps.IsDevelopment,
			AccessTokenMinutes: s.deps.AccessTokenMinutes,
		})

		// Más severo primero; orden estable dentro de cada severidad.
		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		})

		ev := &Evaluation{
			Effective:        effective,
			ValidationErrors: verrs,
			Findings:         findings,
		}
		s.storeEvaluation(ctx, key, ev)
		return ev, nil
	})
	if err != nil {
		log.Error("evaluation failed", logger.Err(err))
		return nil, err
	}

	base := v.(*Evaluation)
	ev := &Evaluation{
		EvaluationID:     uuid.NewString(),
		Effective:        base.Effective,
		ValidationErrors: base.ValidationErrors,
		Findings:         base.Findings,
	}

	s.recordCheck(presetID, ev)
	log.Info("configuration checked",
		logger.EvaluationID(ev.EvaluationID),
		logger.Errors(len(ev.ValidationErrors)),
		logger.Findings(len(ev.Findings)),
	)
	return ev, nil
}

// evaluationKey deriva la clave de cache: preset + versión + hash de los
// overrides ya filtrados + contexto de lint.
func (s *policyService) evaluationKey(preset engine.PresetDefinition, ov engine.Overrides) string {
	raw, _ := json.Marshal(ov)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("check:%s:v%d:%s:dev=%t:ttl=%d",
		preset.PresetID, preset.Version, hex.EncodeToString(sum[:8]),
		s.deps.IsDevelopment, s.deps.AccessTokenMinutes)
}

// cachedEvaluation intenta recuperar una evaluación previa.
func (s *policyService) cachedEvaluation(ctx context.Context, key string) (*Evaluation, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	raw, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(ctx).Warn("cache get failed", logger.Err(err))
		}
		return nil, false
	}
	var ev Evaluation
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, false
	}
	return &ev, true
}

// storeEvaluation guarda la evaluación; errores de cache no son fatales.
func (s *policyService) storeEvaluation(ctx context.Context, key string, ev *Evaluation) {
	if s.deps.Cache == nil {
		return
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, string(raw), s.deps.CacheTTL); err != nil {
		logger.From(ctx).Warn("cache set failed", logger.Err(err))
	}
}

func (s *policyService) recordCheck(presetID string, ev *Evaluation) {
	bySeverity := make(map[string]int, 4)
	for _, f := range ev.Findings {
		bySeverity[string(f.Severity)]++
	}
	httpx.RecordPolicyCheck(presetID, len(ev.ValidationErrors), bySeverity)
}
