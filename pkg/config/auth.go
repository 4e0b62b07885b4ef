package config

import "time"

// AuthConfig groups credential settings.
type AuthConfig struct {
	JWT JWTConfig
}

// JWTConfig configures the token signer. Session and pending-bridge tokens
// share Secret, so rotating it logs every user out.
type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"JWT_SESSION_TTL" envDefault:"168h"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"chatgate"`
	Audience   string        `env:"JWT_AUDIENCE" envDefault:"chatgate-api"`
}

// GateConfig seeds the allow-list and invite ledger at startup.
type GateConfig struct {
	SeedAllowList   []string `env:"GATE_SEED_ALLOWLIST" envSeparator:","`
	SeedInviteCodes []string `env:"GATE_SEED_INVITE_CODES" envSeparator:","`
	SeedNote        string   `env:"GATE_SEED_NOTE" envDefault:"seeded from configuration"`
}
