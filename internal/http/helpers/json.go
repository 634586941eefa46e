// Package helpers contiene utilidades compartidas por los controllers HTTP.
package helpers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dropDatabas3/clientguard/internal/http/errors"
)

const maxBodyBytes = 1 << 20 // 1MB

// ReadJSON decodifica el body JSON del request en dst.
// Limita el tamaño del body a 1MB y tolera un body vacío (dst queda en cero).
func ReadJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil // body vacío es válido
		}
		return errors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// WriteJSON serializa v como JSON con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
