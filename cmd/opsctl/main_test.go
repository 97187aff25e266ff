package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mubark555/pastry-opus-biz/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")
	t.Setenv("STORE_DRIVER", "memory")

	out, err := run(t, "token", "--user", "u-9", "--role", "client", "--client", "c3")
	require.NoError(t, err)

	claims, err := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "cli-test-key", ExpirationHours: 1}).
		ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, "c3", claims.ClientID)
}

func TestTokenCommandRejectsClientWithoutAccount(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	_, err := run(t, "token", "--role", "client", "--client", "")
	assert.Error(t, err)

	_, err = run(t, "token", "--role", "janitor")
	assert.Error(t, err)
}

func TestQuoteCommandAgainstMemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	out, err := run(t, "quote", "--client", "c1", "--product", "p1", "--qty", "15")
	require.NoError(t, err)
	assert.Equal(t, "p1 x15 for c1: unit 108.00, total 1620.00 (tier)\n", out)
}
