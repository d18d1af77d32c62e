package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies status and the {"message": ...} body
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Message string `json:"message"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedMessage, body.Message, "error message mismatch")
}

// AssertValidationErrors verifies a 422 carrying exactly the given field
// errors
func AssertValidationErrors(t *testing.T, resp *http.Response, expected []domain.FieldError) {
	t.Helper()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "unexpected status code")

	var body struct {
		Message string              `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.NotEmpty(t, body.Message)
	assert.ElementsMatch(t, expected, body.Errors)
}
