package policy

import (
	"fmt"
	"net/url"
	"strings"
)

const maxURIEntries = 10

// validationRule inspects the effective configuration and appends
// field-scoped errors to the collector. Rules are independent and
// order-insensitive: each one looks only at the configuration, never at
// errors produced by other rules.
type validationRule func(e EffectiveConfig, c *errorCollector)

var validationRules = []validationRule{
	ruleKnownGrantTypes,
	ruleServiceProfile,
	rulePublicClientGrants,
	ruleAuthorizationCodeNeedsRedirect,
	ruleRedirectURILimits,
	ruleOfflineAccessNeedsRefreshToken,
	rulePKCE,
	ruleRedirectURIFormat,
	ruleNativeRedirectScheme,
	ruleUserCredentialsGate,
	rulePasswordScopesWhenDisabled,
	rulePasswordScopesWhenEnabled,
}

// Validate runs every correctness rule against the effective
// configuration and returns the accumulated field-scoped errors in
// insertion order. An empty result means the configuration may be saved.
// Validate never panics on malformed input: a malformed field simply
// fails the relevant rule.
func Validate(e EffectiveConfig) []ValidationError {
	c := &errorCollector{}
	for _, rule := range validationRules {
		rule(e, c)
	}
	return c.errors
}

// errorCollector acumula errores preservando el orden de inserción,
// incluso con múltiples errores para el mismo campo.
type errorCollector struct {
	errors []ValidationError
}

func (c *errorCollector) add(field, message string) {
	c.errors = append(c.errors, ValidationError{Field: field, Message: message})
}

func (c *errorCollector) addf(field, format string, args ...any) {
	c.add(field, fmt.Sprintf(format, args...))
}

// ─── Rules ───

// Rule 1: grant types are restricted to the known vocabulary.
func ruleKnownGrantTypes(e EffectiveConfig, c *errorCollector) {
	for _, g := range e.GrantTypes {
		switch g {
		case GrantAuthorizationCode, GrantRefreshToken, GrantClientCredentials, GrantPassword:
		default:
			c.addf(FieldGrantTypes, "unknown grant type %q", g)
		}
	}
}

// Rule 2: service profiles only use machine grants and never redirect.
func ruleServiceProfile(e EffectiveConfig, c *errorCollector) {
	if e.Profile != ProfileServiceConfidential {
		return
	}
	for _, g := range e.GrantTypes {
		if g != GrantClientCredentials && g != GrantPassword {
			c.addf(FieldGrantTypes, "grant type %q is not allowed for machine-to-machine services", g)
		}
	}
	if len(e.RedirectURIs) > 0 {
		c.add(FieldRedirectURIs, "machine-to-machine services must not register redirect URIs")
	}
}

// Rule 3: public clients cannot hold credentials-bearing grants.
func rulePublicClientGrants(e EffectiveConfig, c *errorCollector) {
	if e.ClientType != ClientTypePublic {
		return
	}
	if containsString(e.GrantTypes, GrantClientCredentials) {
		c.add(FieldGrantTypes, "public clients cannot use the client_credentials grant")
	}
	if containsString(e.GrantTypes, GrantPassword) {
		c.add(FieldGrantTypes, "public clients cannot use the password grant")
	}
}

// Rule 4: authorization_code requires at least one redirect URI.
func ruleAuthorizationCodeNeedsRedirect(e EffectiveConfig, c *errorCollector) {
	if containsString(e.GrantTypes, GrantAuthorizationCode) && len(e.RedirectURIs) == 0 {
		c.add(FieldRedirectURIs, "at least one redirect URI is required for the authorization_code grant")
	}
}

// Rule 5: bounded URI lists.
func ruleRedirectURILimits(e EffectiveConfig, c *errorCollector) {
	if len(e.RedirectURIs) > maxURIEntries {
		c.addf(FieldRedirectURIs, "at most %d redirect URIs are allowed", maxURIEntries)
	}
	if len(e.PostLogoutRedirectURIs) > maxURIEntries {
		c.addf(FieldPostLogoutRedirectURIs, "at most %d post-logout redirect URIs are allowed", maxURIEntries)
	}
}

// Rule 6: offline_access only makes sense with refresh_token.
func ruleOfflineAccessNeedsRefreshToken(e EffectiveConfig, c *errorCollector) {
	if hasScope(e.Scopes, "offline_access") && !containsString(e.GrantTypes, GrantRefreshToken) {
		c.add(FieldScopes, "the offline_access scope requires the refresh_token grant")
	}
}

// Rule 7: PKCE is a public-client mechanism bound to authorization_code.
func rulePKCE(e EffectiveConfig, c *errorCollector) {
	if !e.PKCERequired {
		return
	}
	if e.ClientType != ClientTypePublic {
		c.add(FieldPKCERequired, "PKCE can only be required for public clients")
	}
	if !containsString(e.GrantTypes, GrantAuthorizationCode) {
		c.add(FieldPKCERequired, "PKCE requires the authorization_code grant")
	}
}

// Rule 8: redirect and post-logout URIs must be absolute, fragment-free,
// and https (http only for loopback hosts). Native profiles additionally
// admit custom non-http schemes; those are policed by rule 9, not here.
func ruleRedirectURIFormat(e EffectiveConfig, c *errorCollector) {
	allowCustom := false
	if p, ok := GetProfile(e.Profile); ok {
		allowCustom = p.RedirectPolicy == RedirectPolicyLoopbackOrCustomScheme
	}
	checkURIList(e.RedirectURIs, FieldRedirectURIs, allowCustom, c)
	checkURIList(e.PostLogoutRedirectURIs, FieldPostLogoutRedirectURIs, allowCustom, c)
}

func checkURIList(uris []string, field string, allowCustom bool, c *errorCollector) {
	for _, raw := range uris {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			c.addf(field, "%q is not an absolute URI", raw)
			continue
		}
		if u.Fragment != "" {
			c.addf(field, "%q must not contain a fragment", raw)
			continue
		}
		switch strings.ToLower(u.Scheme) {
		case "https":
		case "http":
			if !isLoopbackHost(u.Hostname()) {
				c.addf(field, "%q uses http for a non-loopback host", raw)
			}
		default:
			if !allowCustom {
				c.addf(field, "%q must use https (or http for loopback)", raw)
			}
		}
	}
}

// Rule 9: native profiles only redirect to loopback addresses or custom
// (non-http) schemes.
func ruleNativeRedirectScheme(e EffectiveConfig, c *errorCollector) {
	if e.Profile != ProfileMobileNativePublic && e.Profile != ProfileDesktopNativePublic {
		return
	}
	for _, raw := range e.RedirectURIs {
		u, err := url.Parse(raw)
		if err != nil {
			c.addf(FieldRedirectURIs, "%q is not a valid URI", raw)
			continue
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme == "http" || scheme == "https" {
			if !isLoopbackHost(u.Hostname()) {
				c.addf(FieldRedirectURIs, "native clients may only use http(s) redirects to loopback addresses, got %q", raw)
			}
			continue
		}
		if scheme == "" {
			c.addf(FieldRedirectURIs, "%q must use a custom scheme or a loopback address", raw)
		}
	}
}

// Rule 10: the password grant is gated on integration-type clients.
func ruleUserCredentialsGate(e EffectiveConfig, c *errorCollector) {
	if !e.AllowUserCredentials {
		return
	}
	if e.ClientApplicationType != AppTypeIntegration {
		c.add("allowUserCredentials", "user credentials are only allowed for integration clients")
	}
	if !containsString(e.GrantTypes, GrantPassword) {
		c.add(FieldGrantTypes, "allowUserCredentials requires the password grant")
	}
}

// Rule 11: no password-grant scopes when the grant is disabled.
func rulePasswordScopesWhenDisabled(e EffectiveConfig, c *errorCollector) {
	if !e.AllowUserCredentials && len(e.AllowedScopesForPasswordGrant) > 0 {
		c.add("allowedScopesForPasswordGrant", "password-grant scopes require allowUserCredentials")
	}
}

// Rule 12: password-grant scopes must be a non-empty subset of scopes.
func rulePasswordScopesWhenEnabled(e EffectiveConfig, c *errorCollector) {
	if !e.AllowUserCredentials {
		return
	}
	if len(e.AllowedScopesForPasswordGrant) == 0 {
		c.add("allowedScopesForPasswordGrant", "at least one password-grant scope is required")
		return
	}
	for _, s := range e.AllowedScopesForPasswordGrant {
		if !hasScope(e.Scopes, s) {
			c.addf("allowedScopesForPasswordGrant", "scope %q is not among the client scopes", s)
		}
	}
}

// ─── Helpers ───

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// hasScope compara case-insensitive.
func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

func isLoopbackHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
