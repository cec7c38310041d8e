package config

// RedactedConfig returns a copy of cfg with credentials replaced by "***".
// Log this, never the live Config.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.Kalshi.ApiKey)
	redact(&out.XAI.APIKey)
	redact(&out.Redis.Password)

	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
