// Package auth provides optional bearer-token authentication for the API
// group. Tokens are HMAC-signed JWTs; when no secret is configured the
// gateway runs open.
package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Config configures the token service.
type Config struct {
	// Enabled turns bearer-token authentication on for the API group.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Secret is the HMAC signing key. Required when Enabled.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is the expected "iss" claim (optional).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// TokenTTL is the lifetime of issued tokens (default: 24h).
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Enabled && c.Secret == "" {
		return errors.New("auth: secret is required when auth is enabled")
	}
	return nil
}

// Service generates and validates HS256-signed tokens.
type Service struct {
	cfg Config
}

// NewService creates a token service from the given config.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg}, nil
}

// Generate creates a signed token for the given subject.
func (s *Service) Generate(subject string) (string, error) {
	now := time.Now()
	claims := gojwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its registered claims.
func (s *Service) Parse(tokenString string) (*gojwt.RegisteredClaims, error) {
	claims := &gojwt.RegisteredClaims{}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

// ValidatorFunc bridges the service into the auth middleware's
// TokenValidator signature.
func (s *Service) ValidatorFunc() func(string) (map[string]interface{}, error) {
	return func(tokenString string) (map[string]interface{}, error) {
		claims, err := s.Parse(tokenString)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"subject": claims.Subject,
		}, nil
	}
}
