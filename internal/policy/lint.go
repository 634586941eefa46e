package policy

import (
	"fmt"
	"net/url"
	"strings"
)

// Access-token lifetime thresholds, in minutes.
const (
	tokenLifetimeWarnMinutes = 240
	tokenLifetimeRiskMinutes = 720
)

// LintContext carries the environment inputs the linter needs beyond the
// effective configuration itself. Both values are sourced by the caller
// from its own configuration services.
type LintContext struct {
	// IsDevelopment relaja a "risk" varios findings que en producción
	// serían "error".
	IsDevelopment bool

	// AccessTokenMinutes is the configured access-token lifetime.
	AccessTokenMinutes int
}

type lintRule func(e EffectiveConfig, ctx LintContext, c *findingCollector)

var lintRules = []lintRule{
	lintPasswordGrant,
	lintRedirectWildcard,
	lintRedirectHTTP,
	lintSpaWithoutPKCE,
	lintSpaWithSecret,
	lintServiceWithRedirects,
	lintCORSWildcard,
	lintCORSPath,
	lintOfflineAccessWithoutRefresh,
	lintAccessTokenLifetime,
}

// Analyze runs the security rules against the effective configuration
// and returns categorized, severity-ranked findings. It is independent
// of Validate and runs fine on a configuration that already has
// validation errors. Findings are informational only; they never block
// a save.
func Analyze(e EffectiveConfig, ctx LintContext) []Finding {
	c := &findingCollector{}
	for _, rule := range lintRules {
		rule(e, ctx, c)
	}
	return c.findings
}

type findingCollector struct {
	findings []Finding
}

func (c *findingCollector) add(f Finding) {
	if f.Tags == nil {
		f.Tags = []string{}
	}
	c.findings = append(c.findings, f)
}

// envSeverity is the dev/non-dev severity flip shared by several rules.
func envSeverity(ctx LintContext) Severity {
	if ctx.IsDevelopment {
		return SeverityRisk
	}
	return SeverityError
}

// ─── Rules ───

func lintPasswordGrant(e EffectiveConfig, _ LintContext, c *findingCollector) {
	if !containsString(e.GrantTypes, GrantPassword) {
		return
	}
	c.add(Finding{
		Severity:       SeverityDeprecated,
		Code:           "DEPRECATED_PASSWORD_GRANT",
		Title:          "Password grant is deprecated",
		Description:    "The resource-owner-password grant exposes user credentials to the client and is removed in OAuth 2.1. Migrate to the authorization code flow.",
		Field:          FieldGrantTypes,
		Tags:           []string{"oauth", "deprecation"},
		RecommendedFix: "Remove the password grant and use authorization_code with PKCE.",
	})
}

func lintRedirectWildcard(e EffectiveConfig, ctx LintContext, c *findingCollector) {
	for _, uri := range e.RedirectURIs {
		if !strings.Contains(uri, "*") {
			continue
		}
		c.add(Finding{
			Severity:       envSeverity(ctx),
			Code:           "REDIRECT_WILDCARD",
			Title:          "Wildcard in redirect URI",
			Description:    fmt.Sprintf("Redirect URI %q contains a wildcard. Wildcard matching enables open-redirect and token-theft attacks.", uri),
			Field:          FieldRedirectURIs,
			Tags:           []string{"redirect", "open-redirect"},
			RecommendedFix: "Register each redirect URI explicitly.",
		})
	}
}

func lintRedirectHTTP(e EffectiveConfig, ctx LintContext, c *findingCollector) {
	for _, uri := range e.RedirectURIs {
		u, err := url.Parse(uri)
		if err != nil || !strings.EqualFold(u.Scheme, "http") {
			continue
		}
		c.add(Finding{
			Severity:       envSeverity(ctx),
			Code:           "REDIRECT_HTTP_NON_DEV",
			Title:          "Plain http redirect URI",
			Description:    fmt.Sprintf("Redirect URI %q uses http. Authorization codes sent over plain http can be intercepted.", uri),
			Field:          FieldRedirectURIs,
			Tags:           []string{"redirect", "transport"},
			RecommendedFix: "Use https redirect URIs outside local development.",
		})
	}
}

func lintSpaWithoutPKCE(e EffectiveConfig, _ LintContext, c *findingCollector) {
	if e.Profile != ProfileSpaPublic || e.PKCERequired {
		return
	}
	c.add(Finding{
		Severity:       SeverityError,
		Code:           "SPA_PKCE_REQUIRED",
		Title:          "SPA without PKCE",
		Description:    "Single-page applications cannot keep a secret; without PKCE the authorization code flow is vulnerable to interception.",
		Field:          FieldPKCERequired,
		Tags:           []string{"pkce", "spa"},
		RecommendedFix: "Enable PKCE for this client.",
	})
}

func lintSpaWithSecret(e EffectiveConfig, _ LintContext, c *findingCollector) {
	if e.Profile != ProfileSpaPublic || e.ClientType != ClientTypeConfidential {
		return
	}
	c.add(Finding{
		Severity:       SeverityError,
		Code:           "SPA_WITH_SECRET",
		Title:          "SPA configured as confidential",
		Description:    "A client secret embedded in browser-delivered code is public. Treat SPAs as public clients.",
		Field:          FieldClientType,
		Tags:           []string{"spa", "credentials"},
		RecommendedFix: "Change the client type to public.",
	})
}

func lintServiceWithRedirects(e EffectiveConfig, _ LintContext, c *findingCollector) {
	if e.Profile != ProfileServiceConfidential || len(e.RedirectURIs) == 0 {
		return
	}
	c.add(Finding{
		Severity:       SeverityError,
		Code:           "SERVICE_REDIRECT_FORBIDDEN",
		Title:          "Service client with redirect URIs",
		Description:    "Machine-to-machine services never drive a browser; registered redirect URIs widen the attack surface for no benefit.",
		Field:          FieldRedirectURIs,
		Tags:           []string{"m2m", "redirect"},
		RecommendedFix: "Remove all redirect URIs from this client.",
	})
}

func lintCORSWildcard(e EffectiveConfig, ctx LintContext, c *findingCollector) {
	for _, origin := range e.CORSOrigins {
		if !strings.Contains(origin, "*") {
			continue
		}
		c.add(Finding{
			Severity:       envSeverity(ctx),
			Code:           "CORS_WILDCARD",
			Title:          "Wildcard CORS origin",
			Description:    fmt.Sprintf("CORS origin %q contains a wildcard, allowing any matching site to call token-bearing endpoints.", origin),
			Field:          "corsOrigins",
			Tags:           []string{"cors"},
			RecommendedFix: "List each allowed origin explicitly.",
		})
	}
}

func lintCORSPath(e EffectiveConfig, _ LintContext, c *findingCollector) {
	for _, origin := range e.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			c.add(Finding{
				Severity:       SeverityError,
				Code:           "CORS_PATH_INVALID",
				Title:          "CORS origin is not origin-only",
				Description:    fmt.Sprintf("%q carries a path, query or fragment; browsers compare origins as scheme://host[:port] only.", origin),
				Field:          "corsOrigins",
				Tags:           []string{"cors"},
				RecommendedFix: "Strip everything after the authority from the origin.",
			})
		}
	}
}

// Mirrors validator rule 6 as an advisory so the linter is useful when
// run standalone.
func lintOfflineAccessWithoutRefresh(e EffectiveConfig, _ LintContext, c *findingCollector) {
	if !hasScope(e.Scopes, "offline_access") || containsString(e.GrantTypes, GrantRefreshToken) {
		return
	}
	c.add(Finding{
		Severity:       SeverityError,
		Code:           "OFFLINE_ACCESS_WITHOUT_REFRESH",
		Title:          "offline_access without refresh_token",
		Description:    "The offline_access scope promises long-lived access, but the client has no refresh_token grant to redeem it.",
		Field:          FieldScopes,
		Tags:           []string{"scopes", "tokens"},
		RecommendedFix: "Add the refresh_token grant or drop the offline_access scope.",
	})
}

func lintAccessTokenLifetime(_ EffectiveConfig, ctx LintContext, c *findingCollector) {
	var sev Severity
	switch {
	case ctx.AccessTokenMinutes >= tokenLifetimeRiskMinutes:
		sev = SeverityRisk
	case ctx.AccessTokenMinutes >= tokenLifetimeWarnMinutes:
		sev = SeverityWarning
	default:
		return
	}
	c.add(Finding{
		Severity:       sev,
		Code:           "ACCESS_TOKEN_LONG_LIFETIME",
		Title:          "Long access-token lifetime",
		Description:    fmt.Sprintf("Access tokens live %d minutes; a leaked token stays usable for that whole window.", ctx.AccessTokenMinutes),
		Tags:           []string{"tokens", "lifetime"},
		RecommendedFix: "Shorten the access-token lifetime and rely on refresh tokens.",
	})
}
