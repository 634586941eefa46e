package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar — HTTP.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }

// Campos estándar — dominio.

func PresetID(v string) zap.Field     { return zap.String("preset_id", v) }
func ProfileID(v string) zap.Field    { return zap.String("profile_id", v) }
func EvaluationID(v string) zap.Field { return zap.String("evaluation_id", v) }
func Findings(v int) zap.Field        { return zap.Int("findings", v) }
func Errors(v int) zap.Field          { return zap.Int("validation_errors", v) }

// Campos estándar — sistema.

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// Genéricos.

func Count(v int) zap.Field             { return zap.Int("count", v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
