// Package config define a configuração do processo e como carregá-la.
//
// Ordem de precedência (menor -> maior):
//  1. defaults (New)
//  2. arquivo YAML se CONTACT_CONFIG estiver definido
//  3. variáveis de ambiente com prefixo CONTACT_
//  4. nomes legados (GOOGLE_APP_SCRIPT, PORT, FRONTEND_URL) só preenchem o que ficou vazio
package config

import (
	"time"
)

// Config contém a configuração do processo.
type Config struct {
	// Environment "production" muda o formato dos logs.
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	LogFormat   string `koanf:"log_format"`

	// Addr é o endereço de escuta, ex: ":3001".
	Addr string `koanf:"addr"`

	// FormEndpoint é a URL do processador externo (ex: Google Apps Script).
	FormEndpoint string `koanf:"form_endpoint"`

	// AllowedOrigins é a allow-list de CORS. Origem fora da lista não recebe
	// Access-Control-Allow-Origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// TrustXFF usa o X-Forwarded-For para resolver o IP do cliente.
	TrustXFF bool `koanf:"trust_xff"`

	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	RateEnabled    bool          `koanf:"rate_enabled"`
	RateWindow     time.Duration `koanf:"rate_window"`
	RateMax        int           `koanf:"rate_max"`
	RateSweepEvery time.Duration `koanf:"rate_sweep_every"`
	RateHeaders    bool          `koanf:"rate_headers"`

	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`
	// UpstreamRPS <= 0 desliga o ritmo de saída.
	UpstreamRPS   float64 `koanf:"upstream_rps"`
	UpstreamBurst int     `koanf:"upstream_burst"`

	ConcurrencyMax     int           `koanf:"concurrency_max"`
	ConcurrencyTimeout time.Duration `koanf:"concurrency_timeout"`

	MetricsEnabled bool `koanf:"metrics_enabled"`

	StatsEnabled       bool          `koanf:"stats_enabled"`
	StatsRedisAddr     string        `koanf:"stats_redis_addr"`
	StatsRedisPassword string        `koanf:"stats_redis_password"`
	StatsRedisDB       int           `koanf:"stats_redis_db"`
	StatsPrefix        string        `koanf:"stats_prefix"`
	StatsTTL           time.Duration `koanf:"stats_ttl"`
	StatsBucket        string        `koanf:"stats_bucket"`
	StatsTrackKeys     bool          `koanf:"stats_track_keys"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New devolve a configuração com os defaults da implantação de referência.
func New() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Addr:        ":3001",
		AllowedOrigins: []string{
			"https://codiii.com",
			"https://www.codiii.com",
			"http://localhost:5173",
			"http://localhost:3000",
			"http://127.0.0.1:5173",
		},
		MaxBodyBytes: 64 << 10,

		RateEnabled:    true,
		RateWindow:     15 * time.Minute,
		RateMax:        5,
		RateSweepEvery: 5 * time.Minute,

		UpstreamTimeout: 10 * time.Second,
		UpstreamBurst:   1,

		ConcurrencyMax:     100,
		ConcurrencyTimeout: 2 * time.Second,

		MetricsEnabled: true,

		StatsPrefix: "contact:ratelimit",
		StatsTTL:    24 * time.Hour,
		StatsBucket: "minute",

		ShutdownTimeout: 10 * time.Second,
	}
}
