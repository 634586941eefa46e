package policy

import "testing"

// baseConfig returns a minimal valid public web client.
func baseConfig() EffectiveConfig {
	return EffectiveConfig{
		Profile:               ProfileSpaPublic,
		PresetID:              "spa-default",
		PresetVersion:         3,
		ClientType:            ClientTypePublic,
		PKCERequired:          true,
		GrantTypes:            []string{GrantAuthorizationCode, GrantRefreshToken},
		RedirectURIs:          []string{"https://app.example.com/cb"},
		Scopes:                []string{"openid"},
		ClientApplicationType: AppTypeWeb,
	}
}

func errorsOn(errs []ValidationError, field string) []ValidationError {
	var out []ValidationError
	for _, e := range errs {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

func TestValidate_CleanConfig(t *testing.T) {
	if errs := Validate(baseConfig()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_UnknownGrantType(t *testing.T) {
	e := baseConfig()
	e.GrantTypes = append(e.GrantTypes, "implicit")
	errs := Validate(e)
	if len(errorsOn(errs, FieldGrantTypes)) != 1 {
		t.Fatalf("expected one grantTypes error, got %v", errs)
	}
}

func TestValidate_ServiceProfileRejectsRedirects(t *testing.T) {
	e := EffectiveConfig{
		Profile:               ProfileServiceConfidential,
		ClientType:            ClientTypeConfidential,
		GrantTypes:            []string{GrantClientCredentials},
		RedirectURIs:          []string{"https://x/y"},
		ClientApplicationType: AppTypeIntegration,
	}
	errs := Validate(e)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0].Field != FieldRedirectURIs {
		t.Fatalf("expected error on redirectUris, got %v", errs[0])
	}
}

func TestValidate_ServiceProfileRejectsBrowserGrants(t *testing.T) {
	e := EffectiveConfig{
		Profile:               ProfileServiceConfidential,
		ClientType:            ClientTypeConfidential,
		GrantTypes:            []string{GrantAuthorizationCode},
		ClientApplicationType: AppTypeIntegration,
	}
	errs := Validate(e)
	if len(errorsOn(errs, FieldGrantTypes)) == 0 {
		t.Fatalf("authorization_code must be rejected for services: %v", errs)
	}
}

func TestValidate_PublicClientForbiddenGrants(t *testing.T) {
	e := baseConfig()
	e.GrantTypes = []string{GrantAuthorizationCode, GrantClientCredentials, GrantPassword}
	errs := errorsOn(Validate(e), FieldGrantTypes)
	// client_credentials y password se reportan de forma independiente.
	if len(errs) != 2 {
		t.Fatalf("expected 2 independent grant errors, got %v", errs)
	}
}

func TestValidate_AuthorizationCodeNeedsRedirect(t *testing.T) {
	e := baseConfig()
	e.RedirectURIs = nil
	errs := Validate(e)
	if len(errorsOn(errs, FieldRedirectURIs)) == 0 {
		t.Fatalf("missing redirect URIs must be flagged: %v", errs)
	}
}

func TestValidate_URIListLimits(t *testing.T) {
	e := baseConfig()
	for i := 0; i < 11; i++ {
		e.RedirectURIs = append(e.RedirectURIs, "https://app.example.com/cb")
	}
	e.PostLogoutRedirectURIs = make([]string, 11)
	for i := range e.PostLogoutRedirectURIs {
		e.PostLogoutRedirectURIs[i] = "https://app.example.com/out"
	}
	errs := Validate(e)
	if len(errorsOn(errs, FieldRedirectURIs)) == 0 {
		t.Fatalf("redirectUris over limit must error: %v", errs)
	}
	if len(errorsOn(errs, FieldPostLogoutRedirectURIs)) == 0 {
		t.Fatalf("postLogoutRedirectUris over limit must error: %v", errs)
	}
}

func TestValidate_OfflineAccessNeedsRefreshToken(t *testing.T) {
	e := baseConfig()
	e.GrantTypes = []string{GrantAuthorizationCode}
	e.Scopes = []string{"openid", "OFFLINE_ACCESS"} // case-insensitive
	errs := Validate(e)
	if len(errorsOn(errs, FieldScopes)) != 1 {
		t.Fatalf("offline_access without refresh_token must error once: %v", errs)
	}
}

func TestValidate_PKCERules(t *testing.T) {
	// Confidential + PKCE => error.
	e := baseConfig()
	e.ClientType = ClientTypeConfidential
	errs := Validate(e)
	if len(errorsOn(errs, FieldPKCERequired)) == 0 {
		t.Fatalf("PKCE on confidential client must error: %v", errs)
	}

	// Public + PKCE + authorization_code => clean.
	e = baseConfig()
	if errs := Validate(e); len(errs) != 0 {
		t.Fatalf("valid PKCE config must pass: %v", errs)
	}

	// PKCE without authorization_code => error.
	e = baseConfig()
	e.GrantTypes = []string{GrantRefreshToken}
	e.RedirectURIs = nil
	errs = Validate(e)
	if len(errorsOn(errs, FieldPKCERequired)) == 0 {
		t.Fatalf("PKCE without authorization_code must error: %v", errs)
	}
}

func TestValidate_RedirectURIFormat(t *testing.T) {
	cases := []struct {
		uri string
		ok  bool
	}{
		{"https://app.example.com/cb", true},
		{"http://localhost/cb", true},
		{"http://127.0.0.1:8080/cb", true},
		{"http://[::1]:9999/cb", true},
		{"http://app.example.com/cb", false}, // http non-loopback
		{"https://app.example.com/cb#frag", false},
		{"/relative/path", false},
		{"ftp://files.example.com/cb", false},
	}
	for _, tc := range cases {
		e := baseConfig()
		e.RedirectURIs = []string{tc.uri}
		errs := errorsOn(Validate(e), FieldRedirectURIs)
		if tc.ok && len(errs) != 0 {
			t.Fatalf("%q should be accepted: %v", tc.uri, errs)
		}
		if !tc.ok && len(errs) == 0 {
			t.Fatalf("%q should be rejected", tc.uri)
		}
	}
}

func TestValidate_PostLogoutURIFormat(t *testing.T) {
	e := baseConfig()
	e.PostLogoutRedirectURIs = []string{"http://evil.example.com/out"}
	errs := Validate(e)
	if len(errorsOn(errs, FieldPostLogoutRedirectURIs)) == 0 {
		t.Fatalf("invalid post-logout URI must be flagged: %v", errs)
	}
}

func TestValidate_NativeRedirectScheme(t *testing.T) {
	native := func(uris ...string) EffectiveConfig {
		return EffectiveConfig{
			Profile:               ProfileMobileNativePublic,
			ClientType:            ClientTypePublic,
			PKCERequired:          true,
			GrantTypes:            []string{GrantAuthorizationCode},
			RedirectURIs:          uris,
			ClientApplicationType: AppTypeMobile,
		}
	}

	// Custom scheme and loopback are fine.
	if errs := Validate(native("com.example.app:/oauth2redirect")); len(errs) != 0 {
		t.Fatalf("custom scheme must pass for native: %v", errs)
	}
	if errs := Validate(native("http://127.0.0.1:7777/cb")); len(errs) != 0 {
		t.Fatalf("loopback must pass for native: %v", errs)
	}

	// A regular https URL is not a native redirect.
	errs := Validate(native("https://app.example.com/cb"))
	if len(errorsOn(errs, FieldRedirectURIs)) == 0 {
		t.Fatalf("non-loopback https must be rejected for native: %v", errs)
	}
}

func TestValidate_UserCredentialRules(t *testing.T) {
	integration := func() EffectiveConfig {
		return EffectiveConfig{
			Profile:                       ProfileServiceConfidential,
			ClientType:                    ClientTypeConfidential,
			GrantTypes:                    []string{GrantClientCredentials, GrantPassword},
			Scopes:                        []string{"api"},
			ClientApplicationType:         AppTypeIntegration,
			AllowUserCredentials:          true,
			AllowedScopesForPasswordGrant: []string{"api"},
		}
	}

	if errs := Validate(integration()); len(errs) != 0 {
		t.Fatalf("valid integration must pass: %v", errs)
	}

	// Rule 10: wrong application type.
	e := integration()
	e.ClientApplicationType = AppTypeWeb
	if len(errorsOn(Validate(e), "allowUserCredentials")) == 0 {
		t.Fatal("allowUserCredentials outside integration must error")
	}

	// Rule 10: password grant missing.
	e = integration()
	e.GrantTypes = []string{GrantClientCredentials}
	if len(errorsOn(Validate(e), FieldGrantTypes)) == 0 {
		t.Fatal("allowUserCredentials without password grant must error")
	}

	// Rule 11: scopes present while disabled.
	e = integration()
	e.AllowUserCredentials = false
	e.GrantTypes = []string{GrantClientCredentials}
	if len(errorsOn(Validate(e), "allowedScopesForPasswordGrant")) == 0 {
		t.Fatal("password scopes without allowUserCredentials must error")
	}

	// Rule 12: empty scope set.
	e = integration()
	e.AllowedScopesForPasswordGrant = nil
	if len(errorsOn(Validate(e), "allowedScopesForPasswordGrant")) == 0 {
		t.Fatal("enabled password grant needs at least one scope")
	}

	// Rule 12: not a subset.
	e = integration()
	e.AllowedScopesForPasswordGrant = []string{"api", "admin"}
	if len(errorsOn(Validate(e), "allowedScopesForPasswordGrant")) == 0 {
		t.Fatal("password scopes outside client scopes must error")
	}
}

// The same errors must come out regardless of internal evaluation order;
// sanity-check by comparing two runs.
func TestValidate_Deterministic(t *testing.T) {
	e := baseConfig()
	e.ClientType = ClientTypeConfidential
	e.GrantTypes = []string{"implicit", GrantPassword}
	e.RedirectURIs = []string{"http://evil.example.com/cb"}

	a := Validate(e)
	b := Validate(e)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic validation: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic validation at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
