// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/models"
	"github.com/homehelp/homehelp-api/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestSecret signs tokens in tests
const TestSecret = "test-secret-0123456789abcdef0123456789"

var dbCounter atomic.Int64

// RequireTestEnvironment fails the test unless GO_ENV is "test".
// This prevents accidental execution against a development or production database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// GuardMain is used by TestMain in packages that touch a database.
// It refuses production and defaults GO_ENV to "test".
func GuardMain(m *testing.M) int {
	env := os.Getenv("GO_ENV")
	if env == "production" {
		fmt.Fprintln(os.Stderr, "SAFETY CHECK FAILED: tests must not run with GO_ENV=production")
		return 1
	}
	if env == "" {
		_ = os.Setenv("GO_ENV", "test")
	}
	gin.SetMode(gin.TestMode)
	return m.Run()
}

// NewTestDB opens a private in-memory SQLite database with foreign keys on.
// The pool is limited to one connection so concurrent goroutines serialise
// through the store.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:homehelp_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewTokenService creates a token service signing with TestSecret
func NewTokenService(t *testing.T) *services.TokenService {
	t.Helper()

	tokens, err := services.NewTokenService(services.TokenConfig{
		Secret:   TestSecret,
		Issuer:   "homehelp-identity",
		Audience: "homehelp-api",
	})
	require.NoError(t, err)
	return tokens
}

// NewLedger migrates and seeds a ledger on db
func NewLedger(t *testing.T, db *gorm.DB, opts ...services.LedgerOption) *services.Ledger {
	t.Helper()

	ledger := services.NewLedger(db, opts...)
	require.NoError(t, ledger.Migrate())
	require.NoError(t, ledger.Seed(t.Context()))
	return ledger
}

// NewIdentityService migrates an identity service on db with a cheap bcrypt cost
func NewIdentityService(t *testing.T, db *gorm.DB, tokens *services.TokenService) *services.IdentityService {
	t.Helper()

	identities := services.NewIdentityService(db, tokens).WithBcryptCost(4)
	require.NoError(t, identities.Migrate())
	return identities
}

// ServiceByName returns the seeded service with the given name
func ServiceByName(t *testing.T, db *gorm.DB, name string) models.Service {
	t.Helper()

	var svc models.Service
	require.NoError(t, db.Where("name = ?", name).Take(&svc).Error)
	return svc
}

// HelperByName returns the helper with the given name
func HelperByName(t *testing.T, db *gorm.DB, name string) models.Helper {
	t.Helper()

	var helper models.Helper
	require.NoError(t, db.Where("name = ?", name).Take(&helper).Error)
	return helper
}
