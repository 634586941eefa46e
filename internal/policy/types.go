// Package policy implements the OAuth client configuration policy engine:
// static profile/preset catalogs, composition of preset defaults with
// caller overrides, protocol-correctness validation and security linting.
//
// Everything in this package is pure and side-effect free. Catalogs are
// built once at init and never mutated, so concurrent readers need no
// coordination.
package policy

// Profile identifies an archetypal OAuth client shape.
type Profile string

const (
	ProfileSpaPublic           Profile = "SpaPublic"
	ProfileWebConfidential     Profile = "WebConfidential"
	ProfileMobileNativePublic  Profile = "MobileNativePublic"
	ProfileDesktopNativePublic Profile = "DesktopNativePublic"
	ProfileServiceConfidential Profile = "ServiceConfidential"
)

// RedirectPolicy clasifica qué redirect URIs admite un profile.
type RedirectPolicy string

const (
	RedirectPolicyNone                   RedirectPolicy = "none"
	RedirectPolicyAbsoluteHTTPS          RedirectPolicy = "absolute_https"
	RedirectPolicyHTTPSOrLoopback        RedirectPolicy = "absolute_https_or_loopback"
	RedirectPolicyLoopbackOrCustomScheme RedirectPolicy = "native_loopback_or_custom_scheme"
)

// Client types.
const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Grant type vocabulary.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
)

// Application types derived from the profile.
const (
	AppTypeWeb         = "web"
	AppTypeMobile      = "mobile"
	AppTypeDesktop     = "desktop"
	AppTypeIntegration = "integration"
)

// ProfileRule describes the protocol-level constraints of one profile.
type ProfileRule struct {
	ProfileID                        Profile        `json:"profile_id"`
	Summary                          string         `json:"summary"`
	AllowedGrantTypes                []string       `json:"allowed_grant_types"`
	RequiresPKCEForAuthorizationCode bool           `json:"requires_pkce_for_authorization_code"`
	RequiresClientSecret             bool           `json:"requires_client_secret"`
	AllowsRedirectURIs               bool           `json:"allows_redirect_uris"`
	AllowsOfflineAccess              bool           `json:"allows_offline_access"`
	RedirectPolicy                   RedirectPolicy `json:"redirect_policy"`
	RuleCodes                        []string       `json:"rule_codes"`
}

// PresetDefaults son los valores concretos que un preset aporta a la
// configuración efectiva cuando el caller no los sobreescribe.
type PresetDefaults struct {
	ClientType                    string   `json:"client_type"`
	PKCERequired                  bool     `json:"pkce_required"`
	GrantTypes                    []string `json:"grant_types"`
	RedirectURIs                  []string `json:"redirect_uris"`
	PostLogoutRedirectURIs        []string `json:"post_logout_redirect_uris"`
	Scopes                        []string `json:"scopes"`
	AllowUserCredentials          bool     `json:"allow_user_credentials"`
	AllowedScopesForPasswordGrant []string `json:"allowed_scopes_for_password_grant"`
}

// FieldMetadata is per-field help shown by the admin UI.
type FieldMetadata struct {
	HelpText    string `json:"help_text"`
	Example     string `json:"example,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// PresetDefinition is one named, versioned preset bound to a profile.
type PresetDefinition struct {
	PresetID              string                   `json:"preset_id"`
	Name                  string                   `json:"name"`
	ProfileID             Profile                  `json:"profile_id"`
	Summary               string                   `json:"summary"`
	Version               int                      `json:"version"`
	Defaults              PresetDefaults           `json:"defaults"`
	LockedFields          []string                 `json:"locked_fields"`
	AllowedOverrideFields []string                 `json:"allowed_override_fields"`
	FieldMetadata         map[string]FieldMetadata `json:"field_metadata"`
}

// EffectiveConfig is the fully resolved configuration produced by Compose.
// It is built fresh per call, never persisted, and never mutated by the
// validator or the linter.
type EffectiveConfig struct {
	Profile                       Profile  `json:"profile"`
	PresetID                      string   `json:"preset_id"`
	PresetVersion                 int      `json:"preset_version"`
	ClientType                    string   `json:"client_type"`
	PKCERequired                  bool     `json:"pkce_required"`
	GrantTypes                    []string `json:"grant_types"`
	RedirectURIs                  []string `json:"redirect_uris"`
	PostLogoutRedirectURIs        []string `json:"post_logout_redirect_uris"`
	Scopes                        []string `json:"scopes"`
	CORSOrigins                   []string `json:"cors_origins"`
	ClientApplicationType         string   `json:"client_application_type"`
	AllowUserCredentials          bool     `json:"allow_user_credentials"`
	AllowedScopesForPasswordGrant []string `json:"allowed_scopes_for_password_grant"`
}

// ValidationError is a field-scoped, blocking correctness violation.
// A non-empty list means the configuration must not be saved.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Severity ranks a finding. Findings never block a save; severity is
// only used for sorting and highlighting.
type Severity string

const (
	SeverityDeprecated Severity = "deprecated"
	SeverityWarning    Severity = "warning"
	SeverityRisk       Severity = "risk"
	SeverityError      Severity = "error"
)

// Rank returns the sort order: deprecated < warning < risk < error.
func (s Severity) Rank() int {
	switch s {
	case SeverityDeprecated:
		return 0
	case SeverityWarning:
		return 1
	case SeverityRisk:
		return 2
	case SeverityError:
		return 3
	}
	return -1
}

// Finding is a non-blocking security observation about an effective
// configuration.
type Finding struct {
	Severity       Severity `json:"severity"`
	Code           string   `json:"code"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Field          string   `json:"field,omitempty"`
	Tags           []string `json:"tags"`
	RecommendedFix string   `json:"recommended_fix,omitempty"`
}
