package config

import "time"

// OAuthConfig configures the single upstream identity provider. Defaults
// target Huawei Account Kit.
type OAuthConfig struct {
	ClientID     string        `env:"OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"OAUTH_CLIENT_SECRET"`
	RedirectURI  string        `env:"OAUTH_REDIRECT_URI"`
	AuthURL      string        `env:"OAUTH_AUTHORIZE_URL" envDefault:"https://oauth-login.cloud.huawei.com/oauth2/v3/authorize"`
	TokenURL     string        `env:"OAUTH_TOKEN_URL" envDefault:"https://oauth-login.cloud.huawei.com/oauth2/v3/token"`
	UserInfoURL  string        `env:"OAUTH_USER_INFO_URL" envDefault:"https://api.vmall.com/rest.php"`
	Scopes       []string      `env:"OAUTH_SCOPES" envSeparator:" " envDefault:"openid profile"`
	HTTPTimeout  time.Duration `env:"OAUTH_HTTP_TIMEOUT" envDefault:"10s"`
	StateManager StateManagerConfig
}

// StateManagerConfig selects where OAuth state values live between the
// authorize redirect and the callback.
type StateManagerConfig struct {
	Type string        `env:"OAUTH_STATE_STORE" envDefault:"memory"`
	TTL  time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}
