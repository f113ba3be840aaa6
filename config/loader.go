package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"contact-gateway/logging"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CONTACT_"

// listKeys são as chaves []string da Config.
var listKeys = map[string]struct{}{
	"allowed_origins": {},
}

// ErrMissingFormEndpoint indica que a URL do processador externo não foi configurada.
var ErrMissingFormEndpoint = errors.New("form endpoint is required (CONTACT_FORM_ENDPOINT or GOOGLE_APP_SCRIPT)")

// Load monta a Config com defaults, arquivo opcional e env, e valida.
// Erro aqui deve derrubar o processo na subida.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CONTACT_RATE_WINDOW -> rate_window (chaves planas, underscores preservados).
	// Listas vêm separadas por vírgula: CONTACT_ALLOWED_ORIGINS=https://a,https://b
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if _, ok := listKeys[key]; ok {
			return key, strings.Split(value, ",")
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *base
	// lista configurada substitui a padrão em vez de mesclar por índice
	if k.Exists("allowed_origins") {
		cfg.AllowedOrigins = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyLegacy(&cfg, k)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacy aplica as variáveis usadas pelas funções serverless antigas.
func applyLegacy(cfg *Config, k *koanf.Koanf) {
	if cfg.FormEndpoint == "" {
		cfg.FormEndpoint = os.Getenv("GOOGLE_APP_SCRIPT")
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && !k.Exists("addr") {
		cfg.Addr = ":" + port
	}
	if front := strings.TrimSpace(os.Getenv("FRONTEND_URL")); front != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, front)
	}
}

// Validate normaliza e valida a configuração.
func (c *Config) Validate() error {
	c.FormEndpoint = strings.TrimSpace(c.FormEndpoint)
	if c.FormEndpoint == "" {
		return ErrMissingFormEndpoint
	}
	u, err := url.Parse(c.FormEndpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("form endpoint must be an absolute http(s) URL, got %q", c.FormEndpoint)
	}

	c.AllowedOrigins = normalizeOrigins(c.AllowedOrigins)

	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max_body_bytes must be > 0")
	}
	if c.RateEnabled {
		if c.RateWindow <= 0 {
			return errors.New("rate_window must be > 0")
		}
		if c.RateMax <= 0 {
			return errors.New("rate_max must be > 0")
		}
		// sem sweep as chaves de clientes inativos nunca saem da memória
		if c.RateSweepEvery <= 0 {
			return errors.New("rate_sweep_every must be > 0 when rate_enabled=true")
		}
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream_timeout must be > 0")
	}
	if c.UpstreamRPS > 0 && c.UpstreamBurst <= 0 {
		return errors.New("upstream_burst must be > 0 when upstream_rps is set")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("concurrency_max must be >= 0")
	}
	if c.StatsEnabled && strings.TrimSpace(c.StatsRedisAddr) == "" {
		return errors.New("stats_redis_addr is required when stats_enabled=true")
	}
	return nil
}

// normalizeOrigins remove espaços, barra final, vazios e duplicados.
func normalizeOrigins(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
