package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

// IdentityClaims are the custom claims carried next to the registered ones
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Validate rejects tokens whose identity claims are unusable.
// It satisfies validator.CustomClaims.
func (c *IdentityClaims) Validate(ctx context.Context) error {
	if c.Email == "" {
		return errors.New("email claim is required")
	}
	if !models.ValidRole(c.Role) {
		return fmt.Errorf("unknown role %q", c.Role)
	}
	return nil
}

// TokenConfig configures token issuance and verification
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenService issues and verifies HS256 identity tokens.
// It holds no network state; the secret is passed in once at construction.
type TokenService struct {
	cfg       TokenConfig
	signer    jose.Signer
	validator *validator.Validator
	now       func() time.Time
}

// NewTokenService creates a token service for the given secret, issuer and audience
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	key := []byte(cfg.Secret)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	jwtValidator, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return key, nil
		},
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &IdentityClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	return &TokenService{
		cfg:       cfg,
		signer:    signer,
		validator: jwtValidator,
		now:       time.Now,
	}, nil
}

// Issue signs a token asserting the given identity
func (s *TokenService) Issue(identity models.Identity) (string, error) {
	now := s.now()
	registered := jwt.Claims{
		Issuer:   s.cfg.Issuer,
		Subject:  strconv.FormatUint(uint64(identity.ID), 10),
		Audience: jwt.Audience{s.cfg.Audience},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	custom := IdentityClaims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	}

	token, err := jwt.Signed(s.signer).Claims(registered).Claims(custom).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature, issuer, audience and expiry and
// returns the caller it asserts.
func (s *TokenService) Verify(ctx context.Context, token string) (models.VerifiedCaller, error) {
	result, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		return models.VerifiedCaller{}, apperror.Wrap(apperror.Unauthenticated, "Invalid token", err)
	}

	claims, ok := result.(*validator.ValidatedClaims)
	if !ok {
		return models.VerifiedCaller{}, apperror.New(apperror.Unauthenticated, "Invalid token")
	}
	identity, ok := claims.CustomClaims.(*IdentityClaims)
	if !ok {
		return models.VerifiedCaller{}, apperror.New(apperror.Unauthenticated, "Invalid token")
	}

	id, err := strconv.ParseUint(claims.RegisteredClaims.Subject, 10, 64)
	if err != nil || id == 0 {
		return models.VerifiedCaller{}, apperror.New(apperror.Unauthenticated, "Invalid token subject")
	}

	return models.VerifiedCaller{
		ID:    uint(id),
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	}, nil
}

// DecodeUnverified reads the token payload without checking the signature.
// The result is for log correlation only.
func (s *TokenService) DecodeUnverified(token string) (models.UnverifiedCaller, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return models.UnverifiedCaller{}, fmt.Errorf("failed to parse token: %w", err)
	}

	var registered jwt.Claims
	var custom IdentityClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&registered, &custom); err != nil {
		return models.UnverifiedCaller{}, fmt.Errorf("failed to decode token payload: %w", err)
	}

	return models.UnverifiedCaller{
		Subject: registered.Subject,
		Email:   custom.Email,
		Name:    custom.Name,
	}, nil
}
