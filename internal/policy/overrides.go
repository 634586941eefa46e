package policy

import "strings"

// Overrides is the parsed form of a sparse override document. Nil fields
// mean "not overridden". Parsing never fails: wrong-typed or unknown
// entries degrade to "keep the preset default" so that composition stays
// total over its input domain.
type Overrides struct {
	GrantTypes             []string
	RedirectURIs           []string
	PostLogoutRedirectURIs []string
	Scopes                 []string
	PKCERequired           *bool
	ClientType             *string
}

// IsZero reports whether the document overrides nothing.
func (o Overrides) IsZero() bool {
	return o.GrantTypes == nil &&
		o.RedirectURIs == nil &&
		o.PostLogoutRedirectURIs == nil &&
		o.Scopes == nil &&
		o.PKCERequired == nil &&
		o.ClientType == nil
}

// ParseOverrides interpreta un documento JSON-like (map[string]any) como
// Overrides. Un documento ausente o que no es un objeto produce el valor
// cero (sin overrides). Claves no reconocidas se ignoran.
func ParseOverrides(doc any) Overrides {
	var out Overrides

	m, ok := doc.(map[string]any)
	if !ok || m == nil {
		return out
	}

	out.GrantTypes = stringList(m[FieldGrantTypes])
	out.RedirectURIs = stringList(m[FieldRedirectURIs])
	out.PostLogoutRedirectURIs = stringList(m[FieldPostLogoutRedirectURIs])
	out.Scopes = stringList(m[FieldScopes])

	if v, ok := m[FieldPKCERequired].(bool); ok {
		out.PKCERequired = &v
	}
	if v, ok := m[FieldClientType].(string); ok {
		out.ClientType = &v
	}

	return out
}

// FilterLocked returns a copy of the overrides with every field named in
// the preset's locked set cleared. This is the pre-merge policy filter:
// Compose itself never rejects locked fields, callers strip them first.
func FilterLocked(preset PresetDefinition, ov Overrides) Overrides {
	for _, f := range preset.LockedFields {
		switch f {
		case FieldGrantTypes:
			ov.GrantTypes = nil
		case FieldRedirectURIs:
			ov.RedirectURIs = nil
		case FieldPostLogoutRedirectURIs:
			ov.PostLogoutRedirectURIs = nil
		case FieldScopes:
			ov.Scopes = nil
		case FieldPKCERequired:
			ov.PKCERequired = nil
		case FieldClientType:
			ov.ClientType = nil
		}
	}
	return ov
}

// stringList acepta únicamente listas ([]any o []string). Entradas no
// string se descartan; cualquier otra forma produce nil (sin override).
// La lista resultante puede estar vacía y aun así cuenta como override.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// normalizeList trims entries, drops blanks and removes duplicates
// case-insensitively keeping the first occurrence. Order is preserved.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
