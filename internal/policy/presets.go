package policy

// Override field names recognized in a sparse override document. These
// are also the names used by presets to lock or allow fields.
const (
	FieldClientType             = "clientType"
	FieldPKCERequired           = "pkceRequired"
	FieldGrantTypes             = "grantTypes"
	FieldRedirectURIs           = "redirectUris"
	FieldPostLogoutRedirectURIs = "postLogoutRedirectUris"
	FieldScopes                 = "scopes"
)

// presetCatalog is the static table of named presets. Each preset is
// bound to one profile and carries concrete defaults, the fields it
// locks, and per-field help metadata for the admin UI.
//
// Version is bumped whenever the defaults of a preset change, so that
// embedders can key caches by (presetId, version).
var presetCatalog = []PresetDefinition{
	{
		PresetID:  "spa-default",
		Name:      "Single-page application",
		ProfileID: ProfileSpaPublic,
		Summary:   "Browser SPA using authorization code + PKCE. CORS origins derive from redirect URIs.",
		Version:   3,
		Defaults: PresetDefaults{
			ClientType:             ClientTypePublic,
			PKCERequired:           true,
			GrantTypes:             []string{GrantAuthorizationCode, GrantRefreshToken},
			RedirectURIs:           []string{},
			PostLogoutRedirectURIs: []string{},
			Scopes:                 []string{"openid", "profile", "email"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired},
		AllowedOverrideFields: []string{FieldGrantTypes, FieldRedirectURIs, FieldPostLogoutRedirectURIs, FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldRedirectURIs: {
				HelpText:    "Absolute https URLs the browser may be redirected back to after login.",
				Example:     "https://app.example.com/callback",
				Placeholder: "https://app.example.com/callback",
			},
			FieldScopes: {
				HelpText: "OIDC scopes the application may request.",
				Example:  "openid profile email",
			},
		},
	},
	{
		PresetID:  "web-default",
		Name:      "Server-rendered web application",
		ProfileID: ProfileWebConfidential,
		Summary:   "Classic confidential web app with a server-side session and client secret.",
		Version:   2,
		Defaults: PresetDefaults{
			ClientType:             ClientTypeConfidential,
			PKCERequired:           false,
			GrantTypes:             []string{GrantAuthorizationCode, GrantRefreshToken},
			RedirectURIs:           []string{},
			PostLogoutRedirectURIs: []string{},
			Scopes:                 []string{"openid", "profile", "email"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired},
		AllowedOverrideFields: []string{FieldGrantTypes, FieldRedirectURIs, FieldPostLogoutRedirectURIs, FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldRedirectURIs: {
				HelpText: "Absolute https URLs handled by the server-side callback endpoint.",
				Example:  "https://www.example.com/oauth/callback",
			},
			FieldGrantTypes: {
				HelpText: "authorization_code and refresh_token; client_credentials may be added for backend jobs.",
			},
		},
	},
	{
		PresetID:  "mobile-default",
		Name:      "Native mobile application",
		ProfileID: ProfileMobileNativePublic,
		Summary:   "iOS/Android app using a custom scheme or loopback redirect with PKCE.",
		Version:   2,
		Defaults: PresetDefaults{
			ClientType:             ClientTypePublic,
			PKCERequired:           true,
			GrantTypes:             []string{GrantAuthorizationCode, GrantRefreshToken},
			RedirectURIs:           []string{},
			PostLogoutRedirectURIs: []string{},
			Scopes:                 []string{"openid", "profile"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired, FieldGrantTypes},
		AllowedOverrideFields: []string{FieldRedirectURIs, FieldPostLogoutRedirectURIs, FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldRedirectURIs: {
				HelpText:    "Custom app scheme (com.example.app:/callback) or http loopback for dev.",
				Example:     "com.example.app:/oauth2redirect",
				Placeholder: "com.example.app:/oauth2redirect",
			},
		},
	},
	{
		PresetID:  "desktop-default",
		Name:      "Native desktop application",
		ProfileID: ProfileDesktopNativePublic,
		Summary:   "Desktop app using the system browser with a loopback redirect and PKCE.",
		Version:   1,
		Defaults: PresetDefaults{
			ClientType:             ClientTypePublic,
			PKCERequired:           true,
			GrantTypes:             []string{GrantAuthorizationCode, GrantRefreshToken},
			RedirectURIs:           []string{"http://127.0.0.1/callback"},
			PostLogoutRedirectURIs: []string{},
			Scopes:                 []string{"openid", "profile"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired, FieldGrantTypes},
		AllowedOverrideFields: []string{FieldRedirectURIs, FieldPostLogoutRedirectURIs, FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldRedirectURIs: {
				HelpText: "Loopback address the app listens on during login.",
				Example:  "http://127.0.0.1/callback",
			},
		},
	},
	{
		PresetID:  "service-default",
		Name:      "Machine-to-machine service",
		ProfileID: ProfileServiceConfidential,
		Summary:   "Backend service authenticating with client_credentials. No browser, no redirects.",
		Version:   2,
		Defaults: PresetDefaults{
			ClientType:             ClientTypeConfidential,
			PKCERequired:           false,
			GrantTypes:             []string{GrantClientCredentials},
			RedirectURIs:           []string{},
			PostLogoutRedirectURIs: []string{},
			Scopes:                 []string{"api"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired, FieldRedirectURIs, FieldPostLogoutRedirectURIs},
		AllowedOverrideFields: []string{FieldGrantTypes, FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldScopes: {
				HelpText: "API scopes granted to the service.",
				Example:  "api",
			},
		},
	},
	{
		PresetID:  "service-integration",
		Name:      "Legacy integration service",
		ProfileID: ProfileServiceConfidential,
		Summary:   "Integration allowed to use the resource-owner-password grant for legacy systems that cannot do a browser flow.",
		Version:   1,
		Defaults: PresetDefaults{
			ClientType:                    ClientTypeConfidential,
			PKCERequired:                  false,
			GrantTypes:                    []string{GrantClientCredentials, GrantPassword},
			RedirectURIs:                  []string{},
			PostLogoutRedirectURIs:        []string{},
			Scopes:                        []string{"api"},
			AllowUserCredentials:          true,
			AllowedScopesForPasswordGrant: []string{"api"},
		},
		LockedFields:          []string{FieldClientType, FieldPKCERequired, FieldGrantTypes, FieldRedirectURIs, FieldPostLogoutRedirectURIs},
		AllowedOverrideFields: []string{FieldScopes},
		FieldMetadata: map[string]FieldMetadata{
			FieldScopes: {
				HelpText: "Scopes the integration may obtain, including via the password grant.",
				Example:  "api",
			},
		},
	},
}

var presetIndex = func() map[string]PresetDefinition {
	idx := make(map[string]PresetDefinition, len(presetCatalog))
	for _, p := range presetCatalog {
		idx[p.PresetID] = p
	}
	return idx
}()

// ListPresets returns all presets in catalog order.
func ListPresets() []PresetDefinition {
	out := make([]PresetDefinition, len(presetCatalog))
	copy(out, presetCatalog)
	return out
}

// GetPreset looks up a preset by ID.
func GetPreset(id string) (PresetDefinition, bool) {
	p, ok := presetIndex[id]
	return p, ok
}
