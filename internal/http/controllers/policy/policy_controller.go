// Package policy contiene los controllers del API de policy.
package policy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/clientguard/internal/http/dto"
	httperrors "github.com/dropDatabas3/clientguard/internal/http/errors"
	"github.com/dropDatabas3/clientguard/internal/http/helpers"
	svc "github.com/dropDatabas3/clientguard/internal/http/services/policy"
	"github.com/dropDatabas3/clientguard/internal/observability/logger"
	policyengine "github.com/dropDatabas3/clientguard/internal/policy"
)

// Controller maneja las rutas /v1/policy.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de policy.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// ListProfiles maneja GET /v1/policy/profiles
func (c *Controller) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := c.service.ListProfiles(r.Context())
	helpers.WriteJSON(w, http.StatusOK, dto.ProfilesResponse{Profiles: profiles})
}

// ListPresets maneja GET /v1/policy/presets
func (c *Controller) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := c.service.ListPresets(r.Context())

	resp := dto.PresetsResponse{Presets: make([]dto.PresetSummary, 0, len(presets))}
	for _, p := range presets {
		resp.Presets = append(resp.Presets, dto.PresetSummary{
			PresetID:  p.PresetID,
			Name:      p.Name,
			ProfileID: p.ProfileID,
			Summary:   p.Summary,
			Version:   p.Version,
		})
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}

// GetPreset maneja GET /v1/policy/presets/{presetID}
func (c *Controller) GetPreset(w http.ResponseWriter, r *http.Request) {
	presetID := chi.URLParam(r, "presetID")

	preset, err := c.service.GetPreset(r.Context(), presetID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, preset)
}

// Compose maneja POST /v1/policy/presets/{presetID}/compose
func (c *Controller) Compose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("Controller.Compose"),
	)

	presetID := chi.URLParam(r, "presetID")

	var req dto.ComposeRequest
	if err := helpers.ReadJSON(r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	ev, err := c.service.Compose(ctx, presetID, req.Overrides)
	if err != nil {
		log.Error("compose failed", logger.PresetID(presetID), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ComposeResponse{
		EvaluationID: ev.EvaluationID,
		Effective:    ev.Effective,
	})
}

// Check maneja POST /v1/policy/presets/{presetID}/check
func (c *Controller) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("Controller.Check"),
	)

	presetID := chi.URLParam(r, "presetID")

	var req dto.ComposeRequest
	if err := helpers.ReadJSON(r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	ev, err := c.service.Check(ctx, presetID, req.Overrides)
	if err != nil {
		log.Error("check failed", logger.PresetID(presetID), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, toCheckResponse(ev))
}

func toCheckResponse(ev *svc.Evaluation) dto.CheckResponse {
	resp := dto.CheckResponse{
		EvaluationID:     ev.EvaluationID,
		Effective:        ev.Effective,
		Valid:            ev.Valid(),
		ValidationErrors: ev.ValidationErrors,
		Findings:         ev.Findings,
	}
	// Las listas siempre se serializan como [], nunca null.
	if resp.ValidationErrors == nil {
		resp.ValidationErrors = []policyengine.ValidationError{}
	}
	if resp.Findings == nil {
		resp.Findings = []policyengine.Finding{}
	}
	return resp
}
