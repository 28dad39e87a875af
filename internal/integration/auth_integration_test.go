package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Koora7334/minecraft-launcher-core/internal/repository/session"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
)

// notchProfile is the profile the fake services hand out.
var notchProfile = yggdrasil.GameProfile{
	ID:   "069a79f444e94726a5befca90e38aaf5",
	Name: "Notch",
}

// writeAuthError responds the way Yggdrasil reports rejected requests.
func writeAuthError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"ForbiddenOperationException","errorMessage":"Invalid token"}`))
}

// newFakeAuthServer runs a minimal authentication service that tracks
// which access token is currently valid. Tokens rotate on refresh and
// die on invalidate, like the real service.
func newFakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	var (
		mu         sync.Mutex
		validToken string
		issued     int
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Agent struct {
				Name    string `json:"name"`
				Version int    `json:"version"`
			} `json:"agent"`
			Username    string `json:"username"`
			Password    string `json:"password"`
			ClientToken string `json:"clientToken"`
		}

		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "Minecraft", request.Agent.Name)
		require.Equal(t, 1, request.Agent.Version)

		if request.Password != "hunter2" {
			writeAuthError(w, http.StatusForbidden)
			return
		}

		mu.Lock()
		issued++
		validToken = fmt.Sprintf("access-%d", issued)
		token := validToken
		mu.Unlock()

		writeJSON(t, w, yggdrasil.Session{
			AccessToken:       token,
			ClientToken:       request.ClientToken,
			SelectedProfile:   notchProfile,
			AvailableProfiles: []yggdrasil.GameProfile{notchProfile},
			User:              &yggdrasil.User{ID: "user-1", Username: request.Username},
		})
	})

	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			AccessToken string `json:"accessToken"`
			ClientToken string `json:"clientToken"`
		}

		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		mu.Lock()

		ok := request.AccessToken == validToken
		if ok {
			issued++
			validToken = fmt.Sprintf("access-%d", issued)
		}

		token := validToken

		mu.Unlock()

		if !ok {
			writeAuthError(w, http.StatusForbidden)
			return
		}

		writeJSON(t, w, yggdrasil.Session{
			AccessToken:     token,
			ClientToken:     request.ClientToken,
			SelectedProfile: notchProfile,
		})
	})

	mux.HandleFunc("/validate", func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			AccessToken string `json:"accessToken"`
		}

		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		mu.Lock()
		ok := validToken != "" && request.AccessToken == validToken
		mu.Unlock()

		if !ok {
			writeAuthError(w, http.StatusForbidden)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/invalidate", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		validToken = ""
		mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

// TestAuth_SessionLifecycle walks the full account flow: login, persist,
// reload, validate, refresh, invalidate and clear.
//
//nolint:funlen // Integration test requires comprehensive setup and verification.
func TestAuth_SessionLifecycle(t *testing.T) {
	ts := newFakeAuthServer(t)

	ctx := context.Background()
	repository := session.NewFileRepository(filepath.Join(t.TempDir(), "session.json"))

	client := yggdrasil.NewClient(
		yggdrasil.WithAuthHost(ts.URL),
		yggdrasil.WithRetryMax(0),
	)

	credentials := yggdrasil.Credentials{
		Username:    "user@example.com",
		Password:    "hunter2",
		RequestUser: true,
	}

	loggedIn, err := client.Login(ctx, credentials)
	require.NoError(t, err)
	require.NotEmpty(t, loggedIn.AccessToken)
	require.NotEmpty(t, loggedIn.ClientToken)
	require.Equal(t, "Notch", loggedIn.SelectedProfile.Name)
	require.Equal(t, "user@example.com", loggedIn.User.Username)

	// The session survives a round trip through the store.
	require.NoError(t, repository.Save(ctx, loggedIn))

	stored, err := repository.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, loggedIn.AccessToken, stored.AccessToken)
	require.Equal(t, loggedIn.ClientToken, stored.ClientToken)

	valid, err := client.Validate(ctx, stored)
	require.NoError(t, err)
	require.True(t, valid)

	refreshed, err := client.Refresh(ctx, stored)
	require.NoError(t, err)
	require.NotEqual(t, stored.AccessToken, refreshed.AccessToken)
	require.Equal(t, stored.ClientToken, refreshed.ClientToken)

	// The old token died with the refresh.
	valid, err = client.Validate(ctx, stored)
	require.NoError(t, err)
	require.False(t, valid)

	require.NoError(t, repository.Save(ctx, refreshed))
	require.NoError(t, client.Invalidate(ctx, refreshed))

	valid, err = client.Validate(ctx, refreshed)
	require.NoError(t, err)
	require.False(t, valid)

	require.NoError(t, repository.Clear(ctx))

	_, err = repository.Load(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)
}

// TestAuth_LoginRejected surfaces the service error document on bad
// credentials.
func TestAuth_LoginRejected(t *testing.T) {
	ts := newFakeAuthServer(t)

	client := yggdrasil.NewClient(
		yggdrasil.WithAuthHost(ts.URL),
		yggdrasil.WithRetryMax(0),
	)

	_, err := client.Login(context.Background(), yggdrasil.Credentials{
		Username: "user@example.com",
		Password: "wrong",
	})

	var apiErr *yggdrasil.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Equal(t, "ForbiddenOperationException", apiErr.ErrorCode)
}
