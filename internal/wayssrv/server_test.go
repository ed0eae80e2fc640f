package wayssrv_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/db47h/ways/internal/wayssrv"
)

func newTestServer(t *testing.T) *wayssrv.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	return wayssrv.New(wayssrv.Config{
		JWTSecret: []byte("test-signing-key"),
		Clients: map[string]wayssrv.Client{
			"acme": {ID: "acme", SecretHash: string(hash)},
		},
	}, nil)
}

func issueToken(t *testing.T, s *wayssrv.Server) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"clientId": "acme", "secret": "s3cret"})
	req := httptest.NewRequest(http.MethodPost, "/v1/tokens", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestTranslateRequiresBearerToken(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueTokenRejectsBadSecret(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(map[string]string{"clientId": "acme", "secret": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/v1/tokens", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTranslateEndToEnd(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s)

	body, _ := json.Marshal(map[string]string{
		"source": `state s initial: transition on("a") skip; ;`,
		"emit":   "json",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))
	assert.Contains(t, rec.Body.String(), `"classCount": 3`)
}

func TestTranslateReturnsDiagnosticsOnBadSource(t *testing.T) {
	s := newTestServer(t)
	token := issueToken(t, s)

	body, _ := json.Marshal(map[string]string{"source": `state s initial: transition on("") skip; ;`})
	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "diagnostics")
}
