package policy

import "testing"

// The catalogs are static data; their internal consistency is asserted
// here instead of at runtime.

func TestProfileCatalog_UniqueIDs(t *testing.T) {
	seen := map[Profile]bool{}
	for _, p := range ListProfiles() {
		if seen[p.ProfileID] {
			t.Fatalf("duplicate profile id %q", p.ProfileID)
		}
		seen[p.ProfileID] = true
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 profiles, got %d", len(seen))
	}
}

func TestProfileCatalog_Lookup(t *testing.T) {
	p, ok := GetProfile(ProfileSpaPublic)
	if !ok {
		t.Fatal("SpaPublic not found")
	}
	if !p.RequiresPKCEForAuthorizationCode {
		t.Fatal("SpaPublic must require PKCE")
	}
	if p.RequiresClientSecret {
		t.Fatal("SpaPublic must not require a client secret")
	}

	if _, ok := GetProfile("NoSuchProfile"); ok {
		t.Fatal("unknown profile must not resolve")
	}
}

func TestPresetCatalog_UniqueIDsAndProfiles(t *testing.T) {
	seen := map[string]bool{}
	for _, pr := range ListPresets() {
		if seen[pr.PresetID] {
			t.Fatalf("duplicate preset id %q", pr.PresetID)
		}
		seen[pr.PresetID] = true

		if _, ok := GetProfile(pr.ProfileID); !ok {
			t.Fatalf("preset %q references unknown profile %q", pr.PresetID, pr.ProfileID)
		}
		if pr.Version < 1 {
			t.Fatalf("preset %q has non-positive version", pr.PresetID)
		}
	}
}

// Every preset default grant must be allowed by its own profile.
func TestPresetCatalog_DefaultsSatisfyProfile(t *testing.T) {
	for _, pr := range ListPresets() {
		prof, _ := GetProfile(pr.ProfileID)
		for _, g := range pr.Defaults.GrantTypes {
			if !containsString(prof.AllowedGrantTypes, g) {
				t.Fatalf("preset %q default grant %q not allowed by profile %q", pr.PresetID, g, pr.ProfileID)
			}
		}
	}
}

func TestPresetCatalog_LockedAndAllowedDisjoint(t *testing.T) {
	known := map[string]bool{
		FieldClientType:             true,
		FieldPKCERequired:           true,
		FieldGrantTypes:             true,
		FieldRedirectURIs:           true,
		FieldPostLogoutRedirectURIs: true,
		FieldScopes:                 true,
	}
	for _, pr := range ListPresets() {
		locked := map[string]bool{}
		for _, f := range pr.LockedFields {
			if !known[f] {
				t.Fatalf("preset %q locks unknown field %q", pr.PresetID, f)
			}
			locked[f] = true
		}
		for _, f := range pr.AllowedOverrideFields {
			if !known[f] {
				t.Fatalf("preset %q allows unknown field %q", pr.PresetID, f)
			}
			if locked[f] {
				t.Fatalf("preset %q has field %q both locked and overridable", pr.PresetID, f)
			}
		}
	}
}

// Composing every preset with no overrides must yield a configuration
// free of validation errors on every field except redirectUris (several
// presets ship without redirect URIs and require the operator to add
// them before saving).
func TestPresetCatalog_DefaultsMostlyValid(t *testing.T) {
	for _, pr := range ListPresets() {
		eff := Compose(pr, Overrides{})
		for _, verr := range Validate(eff) {
			if verr.Field == FieldRedirectURIs {
				continue
			}
			t.Fatalf("preset %q default config invalid: %s: %s", pr.PresetID, verr.Field, verr.Message)
		}
	}
}
