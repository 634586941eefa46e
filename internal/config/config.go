// Package config carga la configuración del servicio desde config.yaml
// con overrides por variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Auth struct {
		// AdminAPIKey habilita auth por header X-Admin-API-Key.
		AdminAPIKey string `yaml:"admin_api_key"`
		// JWTSecret habilita auth por Bearer token HS256.
		JWTSecret string `yaml:"jwt_secret"`
		// Enforce exige autenticación en los endpoints de policy.
		// En dev suele ir en false.
		Enforce bool `yaml:"enforce"`
	} `yaml:"auth"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		TTL   string `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Rate struct {
		// Enabled activa rate limiting por IP en los endpoints de policy.
		Enabled bool `yaml:"enabled"`
		// MaxPerMinute límite de requests por IP por minuto.
		MaxPerMinute int `yaml:"max_per_minute"`
	} `yaml:"rate"`

	Tokens struct {
		// AccessTTLMinutes alimenta el linter de seguridad.
		AccessTTLMinutes int `yaml:"access_ttl_minutes"`
	} `yaml:"tokens"`
}

// CacheTTL parsea Cache.TTL como duración. Valores inválidos ya fueron
// rechazados por validate.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// IsDevelopment reporta si el entorno es de desarrollo.
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.App.Env) != "prod" && strings.ToLower(c.App.Env) != "staging"
}

// Load lee el YAML (si path no está vacío y existe), aplica overrides de
// entorno y defaults sanos. Un path vacío arranca solo con entorno.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "clientguard"
	}
	if c.Tokens.AccessTTLMinutes == 0 {
		c.Tokens.AccessTTLMinutes = 30
	}
	if c.Rate.MaxPerMinute == 0 {
		c.Rate.MaxPerMinute = 120
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Auth.AdminAPIKey = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvBool("AUTH_ENFORCE"); ok {
		c.Auth.Enforce = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvBool("RATE_LIMIT_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT_MAX_PER_MINUTE"); ok {
		c.Rate.MaxPerMinute = v
	}
	if v, ok := getEnvInt("ACCESS_TOKEN_TTL_MINUTES"); ok {
		c.Tokens.AccessTTLMinutes = v
	}
}

func (c *Config) validate() error {
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache kind redis requires redis addr")
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("config: invalid cache ttl %q: %w", c.Cache.TTL, err)
	}
	if c.Auth.Enforce && c.Auth.AdminAPIKey == "" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.enforce requires an admin API key or a JWT secret")
	}
	if c.Tokens.AccessTTLMinutes < 0 {
		return fmt.Errorf("config: access token TTL cannot be negative")
	}
	if c.Rate.Enabled && c.Rate.MaxPerMinute <= 0 {
		return fmt.Errorf("config: rate limiting requires a positive max_per_minute")
	}
	return nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
