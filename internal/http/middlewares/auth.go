package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/clientguard/internal/http/errors"
)

// AuthConfig configura el middleware de autenticación del API.
type AuthConfig struct {
	// Enforce si es false (modo desarrollo), toda request pasa sin credenciales.
	Enforce bool
	// APIKey valor esperado en el header X-Admin-API-Key.
	APIKey string
	// JWTSecret secreto HS256 para validar tokens Bearer emitidos por el IdP.
	JWTSecret string
}

// RequireAuth valida credenciales de acceso al API de policy.
// Reglas (en este orden):
//  1. Si Enforce es false: permitir (modo dev/compat).
//  2. Si X-Admin-API-Key coincide (comparación constant-time) => permitir.
//  3. Si Authorization: Bearer <token> es un JWT HS256 válido => permitir,
//     inyectando el claim "sub" como subject en el contexto.
//     Si no, 401.
func RequireAuth(cfg AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enforce {
				next.ServeHTTP(w, r)
				return
			}

			// API key estática (automatización, CLI)
			if cfg.APIKey != "" {
				got := strings.TrimSpace(r.Header.Get("X-Admin-API-Key"))
				if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(cfg.APIKey)) == 1 {
					ctx := setSubject(r.Context(), "api-key")
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			// Bearer JWT (operadores humanos vía IdP)
			if cfg.JWTSecret != "" {
				raw := bearerToken(r)
				if raw != "" {
					claims := jwt.MapClaims{}
					tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
						if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
							return nil, jwt.ErrSignatureInvalid
						}
						return []byte(cfg.JWTSecret), nil
					}, jwt.WithValidMethods([]string{"HS256"}))
					if err == nil && tok.Valid {
						sub, _ := claims.GetSubject()
						ctx := setSubject(r.Context(), sub)
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			errors.WriteError(w, errors.ErrUnauthorized.WithDetail("missing or invalid credentials"))
		})
	}
}

// bearerToken extrae el token del header Authorization.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
