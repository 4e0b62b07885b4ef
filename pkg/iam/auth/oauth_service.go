package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/config"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/logx"
	"golang.org/x/oauth2"
)

const profileService = "GOpen.User.getInfo"

// maxProfileBody bounds how much of the profile response is read.
const maxProfileBody = 1 << 20

// ProviderOAuthService is the client for the single upstream provider. The
// code exchange is standard OAuth2; the profile lookup is a form-encoded RPC
// in the Huawei Account Kit style.
type ProviderOAuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	now         func() time.Time
}

func NewProviderOAuthService(cfg *config.OAuthConfig, httpClient *http.Client) *ProviderOAuthService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &ProviderOAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// AuthCodeURL builds the authorize redirect for state.
func (s *ProviderOAuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// ExchangeCodeForAccessToken trades an authorization code for an access
// token. Any failure is AUTH_IDENTITY_PROVIDER_ERROR.
func (s *ProviderOAuthService) ExchangeCodeForAccessToken(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", providerError("token exchange failed", err)
	}
	if token.AccessToken == "" {
		return "", ErrIdentityProviderError().WithDetail("reason", "missing access_token")
	}
	return token.AccessToken, nil
}

// FetchProfile resolves an access token to the caller's identity.
func (s *ProviderOAuthService) FetchProfile(ctx context.Context, accessToken string) (identity.ExternalIdentity, error) {
	form := url.Values{}
	form.Set("nsp_svc", profileService)
	form.Set("access_token", accessToken)
	form.Set("nsp_ts", strconv.FormatInt(s.now().Unix(), 10))
	form.Set("nsp_fmt", "JSON")

	endpoint, err := url.Parse(s.userInfoURL)
	if err != nil {
		return identity.ExternalIdentity{}, providerError("invalid profile endpoint", err)
	}
	q := endpoint.Query()
	q.Set("nsp_svc", profileService)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return identity.ExternalIdentity{}, providerError("failed to build profile request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return identity.ExternalIdentity{}, providerError("profile request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return identity.ExternalIdentity{}, providerError("failed to read profile response", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return identity.ExternalIdentity{}, ErrIdentityProviderError().
			WithDetail("reason", "profile endpoint returned non-2xx").
			WithDetail("status", resp.StatusCode)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return identity.ExternalIdentity{}, ErrIdentityProviderError().WithDetail("reason", "undecodable profile response")
	}

	if code := firstClaim(payload, "error"); code != "" {
		return identity.ExternalIdentity{}, ErrIdentityProviderError().
			WithDetail("reason", "provider returned error").
			WithDetail("error", code).
			WithDetail("error_description", firstClaim(payload, "error_description"))
	}

	profile := identity.ExternalIdentity{
		SubjectID:   firstClaim(payload, "openID", "sub"),
		FederatedID: firstClaim(payload, "unionID"),
		DisplayName: firstClaim(payload, "displayName", "name"),
		AvatarURL:   firstClaim(payload, "headPictureURL", "picture"),
	}
	if !profile.Valid() {
		logx.WithField("fields", payloadKeys(payload)).Warn("profile response has no subject id")
		return identity.ExternalIdentity{}, ErrIdentityProviderError().WithDetail("reason", "missing subject id")
	}

	logx.WithSubject("subject", profile.SubjectID).Info("fetched provider profile")
	return profile, nil
}

func providerError(reason string, err error) error {
	e := ErrRegistry.NewWithCause(CodeIdentityProviderError, err).WithDetail("reason", reason)

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			e.WithDetail("error", re.ErrorCode)
		}
		if re.Response != nil {
			e.WithDetail("status", re.Response.StatusCode)
		}
	}
	return e
}

func firstClaim(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := payload[key]; ok {
			if str := claimToString(value); str != "" {
				return str
			}
		}
	}
	return ""
}

func claimToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func payloadKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	return keys
}
