package policy

import (
	"net/url"
	"strings"
)

// Compose merges a preset's defaults with a caller-supplied override
// document into one effective configuration. It is a pure merge:
//
//   - List fields present in the overrides replace the defaults after
//     trim + case-insensitive dedup; absent fields keep the defaults.
//   - pkceRequired / clientType replace the defaults only when present
//     with the right primitive type.
//   - CORS origins derive from redirect URIs for SpaPublic only.
//
// Locked-field enforcement is NOT done here; see FilterLocked.
func Compose(preset PresetDefinition, ov Overrides) EffectiveConfig {
	d := preset.Defaults

	eff := EffectiveConfig{
		Profile:                       preset.ProfileID,
		PresetID:                      preset.PresetID,
		PresetVersion:                 preset.Version,
		ClientType:                    d.ClientType,
		PKCERequired:                  d.PKCERequired,
		GrantTypes:                    normalizeList(d.GrantTypes),
		RedirectURIs:                  normalizeList(d.RedirectURIs),
		PostLogoutRedirectURIs:        normalizeList(d.PostLogoutRedirectURIs),
		Scopes:                        normalizeList(d.Scopes),
		ClientApplicationType:         applicationType(preset.ProfileID),
		AllowUserCredentials:          d.AllowUserCredentials,
		AllowedScopesForPasswordGrant: normalizeList(d.AllowedScopesForPasswordGrant),
	}

	if ov.GrantTypes != nil {
		eff.GrantTypes = normalizeList(ov.GrantTypes)
	}
	if ov.RedirectURIs != nil {
		eff.RedirectURIs = normalizeList(ov.RedirectURIs)
	}
	if ov.PostLogoutRedirectURIs != nil {
		eff.PostLogoutRedirectURIs = normalizeList(ov.PostLogoutRedirectURIs)
	}
	if ov.Scopes != nil {
		eff.Scopes = normalizeList(ov.Scopes)
	}
	if ov.PKCERequired != nil {
		eff.PKCERequired = *ov.PKCERequired
	}
	if ov.ClientType != nil {
		eff.ClientType = *ov.ClientType
	}

	eff.CORSOrigins = deriveCORSOrigins(preset.ProfileID, eff.RedirectURIs)

	return eff
}

// deriveCORSOrigins extrae scheme://authority de cada redirect URI
// absoluta, deduplicado case-insensitive. Solo aplica a SpaPublic; para
// cualquier otro profile el resultado es siempre vacío.
func deriveCORSOrigins(profile Profile, redirectURIs []string) []string {
	origins := []string{}
	if profile != ProfileSpaPublic {
		return origins
	}

	seen := make(map[string]struct{}, len(redirectURIs))
	for _, raw := range redirectURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			continue
		}
		origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
