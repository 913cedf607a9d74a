package cmd

import (
	"net/http"
	"testing"

	"github.com/iksnae/eebc-chat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheckCommandExists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "healthcheck" {
			found = true
			break
		}
	}
	if !found {
		t.Error("healthcheck command not found in root command")
	}
}

func TestHealthcheckFlags(t *testing.T) {
	for _, name := range []string{"probe", "timeout", "verbose"} {
		if healthcheckCmd.Flag(name) == nil {
			t.Errorf("healthcheck command should have --%s flag", name)
		}
	}
}

func TestHealthcheck(t *testing.T) {
	t.Run("healthy backend", func(t *testing.T) {
		srv, rec := testutil.NewBackend(t, http.StatusOK, testutil.AnswerBody)
		out, err := executeCommand(t, "--backend", srv.URL, "healthcheck")
		require.NoError(t, err)
		assert.Contains(t, out, "Backend healthy")
		assert.Contains(t, out, "Health check passed!")
		assert.Equal(t, 0, rec.Len())
	})

	t.Run("probe", func(t *testing.T) {
		srv, rec := testutil.NewBackend(t, http.StatusOK, testutil.AnswerBody)
		out, err := executeCommand(t, "--backend", srv.URL, "healthcheck", "--probe")
		require.NoError(t, err)
		assert.Contains(t, out, "Chat endpoint answered (2 source(s))")
		assert.Equal(t, 1, rec.Len())
	})

	t.Run("probe failure", func(t *testing.T) {
		srv, _ := testutil.NewBackend(t, http.StatusInternalServerError, "server overloaded")
		out, err := executeCommand(t, "--backend", srv.URL, "healthcheck", "--probe")
		require.Error(t, err)
		assert.Contains(t, out, "Chat endpoint failed")
	})

	t.Run("unreachable backend", func(t *testing.T) {
		out, err := executeCommand(t, "--backend", testutil.UnreachableURL(t), "healthcheck")
		require.Error(t, err)
		assert.Contains(t, out, "Backend is not healthy")
		assert.Contains(t, out, "Health check failed")
	})

	t.Run("invalid config", func(t *testing.T) {
		out, err := executeCommand(t, "--backend", "not a url", "healthcheck")
		require.Error(t, err)
		assert.Contains(t, out, "Configuration is invalid")
	})
}
