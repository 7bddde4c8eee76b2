package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer identifies tokens issued by the access gate.
const TokenIssuer = "notevault"

// TokenClaims are the JWT claims of an access session.
type TokenClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// AccessGate guards the vault with a single shared password. A successful
// login issues a signed token and records the device as authenticated in
// local storage so the next start resumes the session.
type AccessGate struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	local  LocalStore
	now    func() time.Time
}

// NewAccessGate hashes the password with bcrypt and keeps only the hash.
// cost may be zero for bcrypt.DefaultCost.
func NewAccessGate(cfg AccessConfig, local LocalStore, cost int) (*AccessGate, error) {
	if cfg.Password == "" {
		return nil, serr.New("access password is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, serr.New("JWT secret must be at least 32 characters")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cost)
	if err != nil {
		return nil, serr.Wrap(err, "failed to hash access password")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AccessGate{
		hash:   hash,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		local:  local,
		now:    time.Now,
	}, nil
}

// Login checks password and returns a signed token.
func (g *AccessGate) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	token, err := g.generateToken()
	if err != nil {
		return "", err
	}
	if err := g.local.Save(LocalKeyAuth, []byte("true")); err != nil {
		logger.LogErr(serr.Wrap(err, "failed to persist device auth flag"))
	}
	return token, nil
}

// Logout forgets the device authentication.
func (g *AccessGate) Logout() error {
	if err := g.local.Clear(LocalKeyAuth); err != nil {
		return serr.Wrap(err, "failed to clear device auth flag")
	}
	return nil
}

// DeviceAuthenticated reports whether this device logged in previously.
func (g *AccessGate) DeviceAuthenticated() bool {
	blob, ok, err := g.local.Load(LocalKeyAuth)
	if err != nil || !ok {
		return false
	}
	return strings.TrimSpace(string(blob)) == "true"
}

func (g *AccessGate) generateToken() (string, error) {
	now := g.now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   "vault",
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		SessionID: uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", serr.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken parses a token and returns its claims. Expired, malformed or
// foreign tokens yield ErrUnauthorized.
func (g *AccessGate) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, serr.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil {
		logger.Debug("Token rejected", "error", err.Error())
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
