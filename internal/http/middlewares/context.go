package middlewares

import "context"

type ctxKey string

const (
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
	// ctxSubjectKey guarda el subject autenticado (API key o claim sub del JWT)
	ctxSubjectKey ctxKey = "subject"
)

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// setSubject inyecta el subject autenticado en el contexto (interno)
func setSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxSubjectKey, subject)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetSubject obtiene el subject autenticado del contexto.
// Retorna cadena vacía si la ruta no pasó por el middleware de auth.
func GetSubject(ctx context.Context) string {
	if v := ctx.Value(ctxSubjectKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
