package policy

// profileCatalog is the static table of client profiles. It is data, not
// code paths: a closed set of archetypal client shapes built once at
// process start and exposed only through read-only lookup.
var profileCatalog = []ProfileRule{
	{
		ProfileID:                        ProfileSpaPublic,
		Summary:                          "Single-page application running in the browser (public client)",
		AllowedGrantTypes:                []string{GrantAuthorizationCode, GrantRefreshToken},
		RequiresPKCEForAuthorizationCode: true,
		RequiresClientSecret:             false,
		AllowsRedirectURIs:               true,
		AllowsOfflineAccess:              true,
		RedirectPolicy:                   RedirectPolicyHTTPSOrLoopback,
		RuleCodes:                        []string{"SPA_PKCE_REQUIRED", "SPA_WITH_SECRET", "CORS_WILDCARD"},
	},
	{
		ProfileID:                        ProfileWebConfidential,
		Summary:                          "Server-rendered web application (confidential client)",
		AllowedGrantTypes:                []string{GrantAuthorizationCode, GrantRefreshToken, GrantClientCredentials},
		RequiresPKCEForAuthorizationCode: false,
		RequiresClientSecret:             true,
		AllowsRedirectURIs:               true,
		AllowsOfflineAccess:              true,
		RedirectPolicy:                   RedirectPolicyHTTPSOrLoopback,
		RuleCodes:                        []string{"REDIRECT_WILDCARD", "REDIRECT_HTTP_NON_DEV"},
	},
	{
		ProfileID:                        ProfileMobileNativePublic,
		Summary:                          "Native mobile application (public client, PKCE mandatory)",
		AllowedGrantTypes:                []string{GrantAuthorizationCode, GrantRefreshToken},
		RequiresPKCEForAuthorizationCode: true,
		RequiresClientSecret:             false,
		AllowsRedirectURIs:               true,
		AllowsOfflineAccess:              true,
		RedirectPolicy:                   RedirectPolicyLoopbackOrCustomScheme,
		RuleCodes:                        []string{"NATIVE_REDIRECT_SCHEME"},
	},
	{
		ProfileID:                        ProfileDesktopNativePublic,
		Summary:                          "Native desktop application (public client, PKCE mandatory)",
		AllowedGrantTypes:                []string{GrantAuthorizationCode, GrantRefreshToken},
		RequiresPKCEForAuthorizationCode: true,
		RequiresClientSecret:             false,
		AllowsRedirectURIs:               true,
		AllowsOfflineAccess:              true,
		RedirectPolicy:                   RedirectPolicyLoopbackOrCustomScheme,
		RuleCodes:                        []string{"NATIVE_REDIRECT_SCHEME"},
	},
	{
		ProfileID:                        ProfileServiceConfidential,
		Summary:                          "Machine-to-machine service (confidential client, no browser)",
		AllowedGrantTypes:                []string{GrantClientCredentials, GrantPassword},
		RequiresPKCEForAuthorizationCode: false,
		RequiresClientSecret:             true,
		AllowsRedirectURIs:               false,
		AllowsOfflineAccess:              false,
		RedirectPolicy:                   RedirectPolicyNone,
		RuleCodes:                        []string{"SERVICE_REDIRECT_FORBIDDEN", "DEPRECATED_PASSWORD_GRANT"},
	},
}

// profileIndex se construye una vez para lookup O(1) por ID.
var profileIndex = func() map[Profile]ProfileRule {
	idx := make(map[Profile]ProfileRule, len(profileCatalog))
	for _, p := range profileCatalog {
		idx[p.ProfileID] = p
	}
	return idx
}()

// ListProfiles returns all profiles in catalog order. The returned slice
// is a copy; callers may not mutate catalog rows through it.
func ListProfiles() []ProfileRule {
	out := make([]ProfileRule, len(profileCatalog))
	copy(out, profileCatalog)
	return out
}

// GetProfile looks up a profile by ID.
func GetProfile(id Profile) (ProfileRule, bool) {
	p, ok := profileIndex[id]
	return p, ok
}

// applicationType maps a profile to the application type reported on the
// effective configuration.
func applicationType(p Profile) string {
	switch p {
	case ProfileSpaPublic, ProfileWebConfidential:
		return AppTypeWeb
	case ProfileMobileNativePublic:
		return AppTypeMobile
	case ProfileDesktopNativePublic:
		return AppTypeDesktop
	case ProfileServiceConfidential:
		return AppTypeIntegration
	}
	return AppTypeWeb
}
