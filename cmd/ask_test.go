package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/iksnae/eebc-chat/internal"
	"github.com/iksnae/eebc-chat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskFlags(t *testing.T) {
	for _, name := range []string{"district", "building-type", "is-new-building", "floor-area-m2", "electrical-demand-kva", "wwr-percent", "hvac-type", "operating-hours", "output"} {
		assert.NotNil(t, askCmd.Flag(name), "ask should have --%s", name)
	}
}

func TestAskText(t *testing.T) {
	srv, rec := testutil.NewBackend(t, http.StatusOK, testutil.AnswerBody)

	out, err := executeCommand(t, "--backend", srv.URL, "ask", "Does the code apply?")
	require.NoError(t, err)
	assert.Contains(t, out, "Applies: YES")
	assert.Contains(t, out, "Sources (2)")
	assert.Contains(t, out, "p.27")

	require.Equal(t, 1, rec.Len())
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Requests()[0].Body, &body))
	assert.JSONEq(t, `"Does the code apply?"`, string(body["message"]))
	assert.JSONEq(t, `null`, string(body["context"]))
	assert.Equal(t, "application/json", rec.Requests()[0].ContentType)
}

func TestAskJSONWithContext(t *testing.T) {
	srv, rec := testutil.NewBackend(t, http.StatusOK, testutil.AnswerWithoutSourcesBody)

	out, err := executeCommand(t,
		"--backend", srv.URL,
		"ask", "Is", "my", "hotel", "covered?",
		"--district", "Colombo",
		"--electrical-demand-kva", "150",
		"--floor-area-m2", "abc",
		"--is-new-building", "true",
		"--output", "json",
	)
	require.NoError(t, err)

	var session internal.Session
	require.NoError(t, json.Unmarshal([]byte(out), &session))
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "Is my hotel covered?", session.Messages[0].Content)
	assert.Equal(t, internal.AppliesPartial, session.Messages[1].Meta.Applies)
	assert.Empty(t, session.Messages[1].Sources)
	assert.Equal(t, srv.URL, session.Backend)

	var req struct {
		Context map[string]interface{} `json:"context"`
	}
	require.NoError(t, json.Unmarshal(rec.Requests()[0].Body, &req))
	assert.Equal(t, map[string]interface{}{
		"district":              "Colombo",
		"electrical_demand_kva": float64(150),
		"is_new_building":       true,
	}, req.Context)
}

func TestAskBackendFailure(t *testing.T) {
	srv, _ := testutil.NewBackend(t, http.StatusInternalServerError, "server overloaded")

	_, err := executeCommand(t, "--backend", srv.URL, "ask", "hello")
	require.Error(t, err)
	assert.Equal(t, 500, internal.StatusCode(err))
	assert.Contains(t, err.Error(), "server overloaded")
}

func TestAskFailurePrintedOnce(t *testing.T) {
	srv, _ := testutil.NewBackend(t, http.StatusInternalServerError, "server overloaded")

	_, stderr, err := executeCommandC(t, "--backend", srv.URL, "ask", "hello")
	require.Error(t, err)
	assert.NotContains(t, stderr, "server overloaded", "Execute reports the error, cobra must not")
}

func TestAskBlankMessage(t *testing.T) {
	srv, rec := testutil.NewBackend(t, http.StatusOK, testutil.AnswerBody)

	_, err := executeCommand(t, "--backend", srv.URL, "ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is empty")
	assert.Equal(t, 0, rec.Len())
}

func TestAskUnknownOutput(t *testing.T) {
	srv, _ := testutil.NewBackend(t, http.StatusOK, testutil.AnswerBody)

	_, err := executeCommand(t, "--backend", srv.URL, "ask", "hi", "--output", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
