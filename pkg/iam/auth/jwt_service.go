package auth

import (
	"time"

	"github.com/Abraxas-365/chatgate/pkg/config"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService implementación del TokenService usando JWT (HS256)
type JWTService struct {
	secretKey  []byte
	sessionTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

// NewJWTService crea una nueva instancia del servicio JWT
func NewJWTService(secretKey string, sessionTTL time.Duration, issuer, audience string) *JWTService {
	if sessionTTL == 0 {
		sessionTTL = 7 * 24 * time.Hour // Por defecto 7 días
	}
	if issuer == "" {
		issuer = "chatgate"
	}
	if audience == "" {
		audience = "chatgate-api"
	}

	return &JWTService{
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

func NewJWTServiceFromConfig(cfg *config.JWTConfig) *JWTService {
	return NewJWTService(cfg.Secret, cfg.SessionTTL, cfg.Issuer, cfg.Audience)
}

// WithClock replaces the time source; used by tests.
func (j *JWTService) WithClock(now func() time.Time) *JWTService {
	j.now = now
	return j
}

// sessionClaims: sub = internal user id
type sessionClaims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// bridgeClaims: sub = provider subject id, the rest of the identity rides along
type bridgeClaims struct {
	Type        TokenType `json:"type"`
	FederatedID string    `json:"fid,omitempty"`
	DisplayName string    `json:"name,omitempty"`
	AvatarURL   string    `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession firma un token de sesión para el usuario
func (j *JWTService) IssueSession(u *user.User) (*SessionToken, error) {
	if u == nil || u.ID.IsEmpty() {
		return nil, ErrTokenGenerationFailed().WithDetail("error", "user has no id")
	}

	now := j.now()
	expiresAt := now.Add(j.sessionTTL)

	claims := sessionClaims{
		Type: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   u.ID.String(),
			Audience:  []string{j.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := j.sign(claims)
	if err != nil {
		return nil, err
	}
	return &SessionToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IssuePendingBridge firma un token puente que vence exactamente 5 minutos
// después de emitido
func (j *JWTService) IssuePendingBridge(id identity.ExternalIdentity) (*PendingBridgeToken, error) {
	if !id.Valid() {
		return nil, ErrTokenGenerationFailed().WithDetail("error", "identity has no subject")
	}

	now := j.now()

	claims := bridgeClaims{
		Type:        TokenTypePending,
		FederatedID: id.FederatedID,
		DisplayName: id.DisplayName,
		AvatarURL:   id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   id.SubjectID,
			Audience:  []string{j.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(PendingBridgeTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := j.sign(claims)
	if err != nil {
		return nil, err
	}
	return &PendingBridgeToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyPendingBridge devuelve la identidad del token puente. Cualquier falla
// (firma, algoritmo, expiración, sujeto vacío o tipo distinto de "pending")
// es AUTH_INVALID_BRIDGE_TOKEN.
func (j *JWTService) VerifyPendingBridge(tokenString string) (identity.ExternalIdentity, error) {
	var claims bridgeClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return identity.ExternalIdentity{}, ErrInvalidBridgeToken().WithDetail("error", err.Error())
	}

	if claims.Type != TokenTypePending {
		return identity.ExternalIdentity{}, ErrInvalidBridgeToken().WithDetail("error", "unexpected token type")
	}
	if claims.Subject == "" {
		return identity.ExternalIdentity{}, ErrInvalidBridgeToken().WithDetail("error", "missing subject")
	}

	return identity.ExternalIdentity{
		SubjectID:   claims.Subject,
		FederatedID: claims.FederatedID,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	}, nil
}

// ValidateSessionToken valida y decodifica un token de sesión
func (j *JWTService) ValidateSessionToken(tokenString string) (*TokenClaims, error) {
	var claims sessionClaims
	if err := j.parse(tokenString, &claims); err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	if claims.Type != TokenTypeSession {
		return nil, ErrTokenValidationFailed().WithDetail("error", "unexpected token type")
	}

	userID, err := kernel.ParseUserID(claims.Subject)
	if err != nil || userID.IsEmpty() {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid subject")
	}

	tc := &TokenClaims{UserID: userID, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		tc.IssuedAt = claims.IssuedAt.Time
	}
	return tc, nil
}

func (j *JWTService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return tokenString, nil
}

func (j *JWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}
