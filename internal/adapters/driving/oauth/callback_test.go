//nolint:noctx // Test file uses http.Get for convenience
package oauth

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, state string) *CallbackServer {
	t.Helper()

	server := NewCallbackServer(0, state)
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		assert.NoError(t, server.Stop())
	})
	return server
}

func TestCallbackServer_StartAssignsPort(t *testing.T) {
	server := startTestServer(t, "test-state")

	assert.NotZero(t, server.Port())
	assert.Equal(t, fmt.Sprintf("http://localhost:%d/callback", server.Port()), server.RedirectURI())
}

func TestCallbackServer_Stop_NotStarted(t *testing.T) {
	server := NewCallbackServer(8080, "test-state")
	require.NoError(t, server.Stop())
}

func TestCallbackServer_HandleCallback_Success(t *testing.T) {
	server := startTestServer(t, "state-abc")

	callbackURL := fmt.Sprintf("http://127.0.0.1:%d/callback?state=%s&code=%s",
		server.Port(), url.QueryEscape("state-abc"), url.QueryEscape("auth-code-1"))
	resp, err := http.Get(callbackURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := server.WaitForCode(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "auth-code-1", code)
}

func TestCallbackServer_HandleCallback_StateMismatch(t *testing.T) {
	server := startTestServer(t, "expected-state")

	callbackURL := fmt.Sprintf("http://127.0.0.1:%d/callback?state=wrong&code=auth-code",
		server.Port())
	resp, err := http.Get(callbackURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(2 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_HandleCallback_ProviderError(t *testing.T) {
	server := startTestServer(t, "state-abc")

	callbackURL := fmt.Sprintf("http://127.0.0.1:%d/callback?error=access_denied&error_description=user+denied",
		server.Port())
	resp, err := http.Get(callbackURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(2 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
}

func TestCallbackServer_HandleCallback_MissingCode(t *testing.T) {
	server := startTestServer(t, "state-abc")

	callbackURL := fmt.Sprintf("http://127.0.0.1:%d/callback?state=state-abc", server.Port())
	resp, err := http.Get(callbackURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = server.WaitForCode(2 * time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorization code")
}

func TestCallbackServer_WaitForCode_Timeout(t *testing.T) {
	server := startTestServer(t, "state-abc")

	_, err := server.WaitForCode(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestFindAvailablePort(t *testing.T) {
	port, err := FindAvailablePort(20000, 20100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 20100)
}

func TestGenerateCodeVerifier(t *testing.T) {
	v1, err := GenerateCodeVerifier()
	require.NoError(t, err)
	v2, err := GenerateCodeVerifier()
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.GreaterOrEqual(t, len(v1), 43)
	assert.LessOrEqual(t, len(v1), 128)
}

func TestGenerateCodeChallenge(t *testing.T) {
	// S256 challenge for a known verifier is deterministic.
	challenge := GenerateCodeChallenge("test-verifier")
	assert.Equal(t, challenge, GenerateCodeChallenge("test-verifier"))
	assert.NotEqual(t, challenge, GenerateCodeChallenge("other-verifier"))
	assert.NotContains(t, challenge, "=")
}

func TestGenerateState(t *testing.T) {
	s1, err := GenerateState()
	require.NoError(t, err)
	s2, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}
