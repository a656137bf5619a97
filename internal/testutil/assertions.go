package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONResponse decodes the response body into v, failing the test
// with the raw body in the message when it is not the expected shape.
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorContains checks the status code and that the plain-text
// error body mentions the expected message. Handler rejections in this
// API are http.Error strings, not JSON envelopes.
func AssertErrorContains(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()

	assert.Equal(t, status, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	assert.Contains(t, string(body), message, "error message mismatch")
}
