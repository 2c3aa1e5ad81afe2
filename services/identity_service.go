package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password length bounds. bcrypt rejects anything over 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is a new account request
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// ProfileInput updates an account. Empty fields are left unchanged.
type ProfileInput struct {
	Name  string
	Email string
}

// IdentityService stores accounts and issues tokens for them
type IdentityService struct {
	db         *gorm.DB
	tokens     *TokenService
	bcryptCost int
}

// NewIdentityService creates an identity service that signs with tokens
func NewIdentityService(db *gorm.DB, tokens *TokenService) *IdentityService {
	return &IdentityService{db: db, tokens: tokens, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost returns a copy using cost for new hashes
func (s *IdentityService) WithBcryptCost(cost int) *IdentityService {
	clone := *s
	clone.bcryptCost = cost
	return &clone
}

// Migrate creates or updates the users table
func (s *IdentityService) Migrate() error {
	if err := s.db.AutoMigrate(&models.Identity{}); err != nil {
		return fmt.Errorf("failed to migrate identities: %w", err)
	}
	return nil
}

// Register creates an account and returns it with a fresh token
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*models.Identity, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	if name == "" || email == "" || in.Password == "" {
		return nil, "", apperror.New(apperror.MissingFields, "Name, email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, "", apperror.New(apperror.InvalidInput, "Invalid email")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, "", apperror.New(apperror.InvalidInput, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(in.Password) > MaxPasswordLength {
		return nil, "", apperror.New(apperror.InvalidInput, fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLength))
	}
	if !models.ValidRole(role) {
		return nil, "", apperror.New(apperror.InvalidInput, "Role must be user or helper")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	identity := models.Identity{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&identity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, "", apperror.Wrap(apperror.Conflict, "Email already registered", err)
		}
		return nil, "", fmt.Errorf("failed to create identity: %w", err)
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, "", err
	}
	return &identity, token, nil
}

// Login checks the password and returns the account with a fresh token.
// Unknown emails and wrong passwords produce the same error.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*models.Identity, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperror.New(apperror.MissingFields, "Email and password are required")
	}

	var identity models.Identity
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperror.New(apperror.Unauthenticated, "Invalid credentials")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperror.New(apperror.Unauthenticated, "Invalid credentials")
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, "", err
	}
	return &identity, token, nil
}

// Get returns the account of the caller
func (s *IdentityService) Get(ctx context.Context, caller models.VerifiedCaller) (*models.Identity, error) {
	var identity models.Identity
	if err := s.db.WithContext(ctx).First(&identity, caller.ID).Error; err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	return &identity, nil
}

// UpdateProfile changes the caller's name and/or email
func (s *IdentityService) UpdateProfile(ctx context.Context, caller models.VerifiedCaller, in ProfileInput) (*models.Identity, error) {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if !emailPattern.MatchString(email) {
			return nil, apperror.New(apperror.InvalidInput, "Invalid email")
		}
		updates["email"] = email
	}

	identity, err := s.Get(ctx, caller)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return identity, nil
	}

	if err := s.db.WithContext(ctx).Model(identity).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Wrap(apperror.Conflict, "Email already registered", err)
		}
		return nil, fmt.Errorf("failed to update identity: %w", err)
	}
	return s.Get(ctx, caller)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation detects duplicate keys on both PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
