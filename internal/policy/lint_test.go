package policy

import "testing"

func findingsWithCode(fs []Finding, code string) []Finding {
	var out []Finding
	for _, f := range fs {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

func prodCtx() LintContext { return LintContext{IsDevelopment: false, AccessTokenMinutes: 30} }
func devCtx() LintContext  { return LintContext{IsDevelopment: true, AccessTokenMinutes: 30} }

func TestAnalyze_CleanConfigNoFindings(t *testing.T) {
	e := baseConfig()
	if fs := Analyze(e, prodCtx()); len(fs) != 0 {
		t.Fatalf("expected no findings, got %v", fs)
	}
}

func TestAnalyze_PasswordGrantDeprecated(t *testing.T) {
	e := baseConfig()
	e.GrantTypes = append(e.GrantTypes, GrantPassword)
	fs := findingsWithCode(Analyze(e, prodCtx()), "DEPRECATED_PASSWORD_GRANT")
	if len(fs) != 1 {
		t.Fatalf("expected one deprecation finding, got %v", fs)
	}
	if fs[0].Severity != SeverityDeprecated {
		t.Fatalf("severity = %s, want deprecated", fs[0].Severity)
	}
}

func TestAnalyze_RedirectWildcardSeverityFlip(t *testing.T) {
	e := baseConfig()
	e.RedirectURIs = []string{"https://*.example.com/cb"}

	dev := findingsWithCode(Analyze(e, devCtx()), "REDIRECT_WILDCARD")
	prod := findingsWithCode(Analyze(e, prodCtx()), "REDIRECT_WILDCARD")
	if len(dev) != 1 || len(prod) != 1 {
		t.Fatalf("wildcard finding missing: dev=%v prod=%v", dev, prod)
	}
	if dev[0].Severity != SeverityRisk {
		t.Fatalf("dev severity = %s, want risk", dev[0].Severity)
	}
	if prod[0].Severity != SeverityError {
		t.Fatalf("prod severity = %s, want error", prod[0].Severity)
	}
}

func TestAnalyze_HTTPRedirectSeverityFlip(t *testing.T) {
	e := baseConfig()
	e.RedirectURIs = []string{"http://app.example.com/cb"}

	dev := findingsWithCode(Analyze(e, devCtx()), "REDIRECT_HTTP_NON_DEV")
	prod := findingsWithCode(Analyze(e, prodCtx()), "REDIRECT_HTTP_NON_DEV")
	if len(dev) != 1 || dev[0].Severity != SeverityRisk {
		t.Fatalf("dev: %v", dev)
	}
	if len(prod) != 1 || prod[0].Severity != SeverityError {
		t.Fatalf("prod: %v", prod)
	}
}

func TestAnalyze_SpaRules(t *testing.T) {
	e := baseConfig()
	e.PKCERequired = false
	if fs := findingsWithCode(Analyze(e, prodCtx()), "SPA_PKCE_REQUIRED"); len(fs) != 1 || fs[0].Severity != SeverityError {
		t.Fatalf("SPA without PKCE: %v", fs)
	}

	e = baseConfig()
	e.ClientType = ClientTypeConfidential
	if fs := findingsWithCode(Analyze(e, prodCtx()), "SPA_WITH_SECRET"); len(fs) != 1 || fs[0].Severity != SeverityError {
		t.Fatalf("SPA with secret: %v", fs)
	}
}

func TestAnalyze_ServiceWithRedirects(t *testing.T) {
	e := EffectiveConfig{
		Profile:               ProfileServiceConfidential,
		ClientType:            ClientTypeConfidential,
		GrantTypes:            []string{GrantClientCredentials},
		RedirectURIs:          []string{"https://x/y"},
		ClientApplicationType: AppTypeIntegration,
	}
	if fs := findingsWithCode(Analyze(e, prodCtx()), "SERVICE_REDIRECT_FORBIDDEN"); len(fs) != 1 {
		t.Fatalf("service redirect finding missing: %v", fs)
	}
}

func TestAnalyze_CORSRules(t *testing.T) {
	e := baseConfig()
	e.CORSOrigins = []string{"https://*.example.com"}
	if fs := findingsWithCode(Analyze(e, prodCtx()), "CORS_WILDCARD"); len(fs) != 1 || fs[0].Severity != SeverityError {
		t.Fatalf("CORS wildcard: %v", fs)
	}
	if fs := findingsWithCode(Analyze(e, devCtx()), "CORS_WILDCARD"); len(fs) != 1 || fs[0].Severity != SeverityRisk {
		t.Fatalf("CORS wildcard dev: %v", fs)
	}

	e = baseConfig()
	e.CORSOrigins = []string{"https://app.example.com/path", "https://ok.example.com"}
	fs := findingsWithCode(Analyze(e, prodCtx()), "CORS_PATH_INVALID")
	if len(fs) != 1 {
		t.Fatalf("expected one path finding, got %v", fs)
	}
}

func TestAnalyze_OfflineAccessAdvisory(t *testing.T) {
	e := baseConfig()
	e.GrantTypes = []string{GrantAuthorizationCode}
	e.Scopes = []string{"openid", "offline_access"}
	if fs := findingsWithCode(Analyze(e, prodCtx()), "OFFLINE_ACCESS_WITHOUT_REFRESH"); len(fs) != 1 {
		t.Fatalf("offline_access advisory missing: %v", fs)
	}
}

func TestAnalyze_AccessTokenLifetimeThresholds(t *testing.T) {
	cases := []struct {
		minutes int
		want    Severity // "" means no finding
	}{
		{30, ""},
		{239, ""},
		{240, SeverityWarning},
		{719, SeverityWarning},
		{720, SeverityRisk},
		{1440, SeverityRisk},
	}
	for _, tc := range cases {
		ctx := LintContext{AccessTokenMinutes: tc.minutes}
		fs := findingsWithCode(Analyze(baseConfig(), ctx), "ACCESS_TOKEN_LONG_LIFETIME")
		if tc.want == "" {
			if len(fs) != 0 {
				t.Fatalf("minutes=%d: unexpected finding %v", tc.minutes, fs)
			}
			continue
		}
		if len(fs) != 1 || fs[0].Severity != tc.want {
			t.Fatalf("minutes=%d: got %v, want severity %s", tc.minutes, fs, tc.want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	order := []Severity{SeverityDeprecated, SeverityWarning, SeverityRisk, SeverityError}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s must rank below %s", order[i-1], order[i])
		}
	}
}

// End-to-end: compose, validate and lint the documented SPA scenario.
func TestEngine_EndToEndSpaScenario(t *testing.T) {
	pr := mustPreset(t, "spa-default")
	ov := ParseOverrides(map[string]any{
		"redirectUris": []any{"https://app.test/cb"},
	})

	eff := Compose(pr, FilterLocked(pr, ov))
	if !eff.PKCERequired {
		t.Fatal("pkceRequired default lost")
	}
	if len(eff.RedirectURIs) != 1 || eff.RedirectURIs[0] != "https://app.test/cb" {
		t.Fatalf("redirectUris = %v", eff.RedirectURIs)
	}
	if len(eff.CORSOrigins) != 1 || eff.CORSOrigins[0] != "https://app.test" {
		t.Fatalf("corsOrigins = %v", eff.CORSOrigins)
	}

	if errs := Validate(eff); len(errs) != 0 {
		t.Fatalf("validation errors: %v", errs)
	}
	if fs := Analyze(eff, LintContext{IsDevelopment: false, AccessTokenMinutes: 30}); len(fs) != 0 {
		t.Fatalf("findings: %v", fs)
	}
}
