// Package dto contiene los request/response del API de policy.
package dto

import "github.com/dropDatabas3/clientguard/internal/policy"

// ProfilesResponse lista el catálogo de profiles.
type ProfilesResponse struct {
	Profiles []policy.ProfileRule `json:"profiles"`
}

// PresetSummary es la vista resumida de un preset en listados.
type PresetSummary struct {
	PresetID  string         `json:"preset_id"`
	Name      string         `json:"name"`
	ProfileID policy.Profile `json:"profile_id"`
	Summary   string         `json:"summary"`
	Version   int            `json:"version"`
}

// PresetsResponse lista el catálogo de presets.
type PresetsResponse struct {
	Presets []PresetSummary `json:"presets"`
}

// ComposeRequest es la entrada de compose y check. Overrides es el
// documento sparse tal cual lo envía el cliente; el engine tolera
// cualquier forma (claves desconocidas o mal tipadas se ignoran).
type ComposeRequest struct {
	Overrides map[string]any `json:"overrides,omitempty"`
}

// ComposeResponse es la configuración efectiva resultante.
type ComposeResponse struct {
	EvaluationID string                 `json:"evaluation_id"`
	Effective    policy.EffectiveConfig `json:"effective"`
}

// CheckResponse es la evaluación completa: composición + validación +
// linting. Valid es true sii ValidationErrors está vacío.
type CheckResponse struct {
	EvaluationID     string                   `json:"evaluation_id"`
	Effective        policy.EffectiveConfig   `json:"effective"`
	Valid            bool                     `json:"valid"`
	ValidationErrors []policy.ValidationError `json:"validation_errors"`
	Findings         []policy.Finding         `json:"findings"`
}
