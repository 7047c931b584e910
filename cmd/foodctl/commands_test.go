package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "foodctl-test-secret"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seeded returns the --db-path flag of a freshly seeded database
func seeded(t *testing.T) string {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("NOTIFY_TRANSPORT", "direct")

	dbFlag := "--db-path=" + filepath.Join(t.TempDir(), "food.sqlite")
	out, err := run(t, "seed", dbFlag, "--file", "../../seed/menu.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 users")
	return dbFlag
}

func TestSeedIsIdempotent(t *testing.T) {
	dbFlag := seeded(t)

	out, err := run(t, "seed", dbFlag, "--file", "../../seed/menu.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 users and 0 items")
}

func TestPriceCommand(t *testing.T) {
	dbFlag := seeded(t)

	out, err := run(t, "price", "b1", dbFlag,
		"--size", "Double", "--topping", "Bacon", "--extra", "Cheddar", "--quantity", "2")
	require.NoError(t, err)

	var quote services.PriceQuote
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, int64(320+120+40+25), quote.UnitPrice)
	assert.Equal(t, int64(2*(320+120+40+25)), quote.LineTotal)
	assert.NotEmpty(t, quote.Fingerprint)

	_, err = run(t, "price", "b1", dbFlag, "--size", "Triple")
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	_, err = run(t, "price", "nope", dbFlag)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestCreateClientCommand(t *testing.T) {
	dbFlag := seeded(t)

	out, err := run(t, "create-client", dbFlag, "--user", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Client Secret: ")
	assert.Contains(t, out, "Owner: admin (admin)")

	_, err = run(t, "create-client", dbFlag, "--user", "ghost")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	_, err = run(t, "create-client", dbFlag, "--grants", "authorization_code")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTokenCommand(t *testing.T) {
	dbFlag := seeded(t)

	out, err := run(t, "token", dbFlag, "--user", "customer")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "customer", claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])
}
