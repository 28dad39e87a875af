package yggdrasil

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const testProfileID = "11111111222233334444555555555555"

const testTexturesJSON = `{
	"timestamp": 1700000000000,
	"profileId": "11111111222233334444555555555555",
	"profileName": "Notch",
	"textures": {
		"SKIN": {
			"url": "http://textures.minecraft.net/texture/abcdef",
			"metadata": {"model": "slim"}
		},
		"CAPE": {
			"url": "http://textures.minecraft.net/texture/fedcba"
		}
	}
}`

func newProfileServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	textures := base64.StdEncoding.EncodeToString([]byte(testTexturesJSON))

	mux := http.NewServeMux()
	mux.HandleFunc("/session/minecraft/profile/"+testProfileID, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		body := `{
			"id": "` + testProfileID + `",
			"name": "Notch",
			"properties": [{"name": "textures", "value": "` + textures + `"}]
		}`

		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	})
	mux.HandleFunc("/users/profiles/minecraft/Notch", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		_, err := w.Write([]byte(`{"id": "` + testProfileID + `", "name": "Notch"}`))
		require.NoError(t, err)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestLookupProfile(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	server := newProfileServer(t, &hits)
	client := NewClient(WithSessionHost(server.URL))

	profile, err := client.LookupProfile(context.Background(), testProfileID)
	require.NoError(t, err)
	require.Equal(t, testProfileID, profile.ID)
	require.Equal(t, "Notch", profile.Name)
	require.Len(t, profile.Properties, 1)

	textures, err := profile.Textures()
	require.NoError(t, err)
	require.Equal(t, "Notch", textures.ProfileName)
	require.NotNil(t, textures.Textures.Skin)
	require.Equal(t, "http://textures.minecraft.net/texture/abcdef", textures.Textures.Skin.URL)
	require.Equal(t, "slim", textures.Textures.Skin.Model())
	require.NotNil(t, textures.Textures.Cape)
	require.Equal(t, "classic", textures.Textures.Cape.Model())

	again, err := client.LookupProfile(context.Background(), testProfileID)
	require.NoError(t, err)
	require.Equal(t, profile, again)
	require.Equal(t, int64(1), hits.Load(), "the second lookup must come from the cache")
}

func TestLookupProfileNotFound(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not_found_status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "empty_no_content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(testCase.handler)
			t.Cleanup(server.Close)

			client := NewClient(WithSessionHost(server.URL), WithRetryMax(0))

			_, err := client.LookupProfile(context.Background(), "00000000000000000000000000000000")
			require.ErrorIs(t, err, ErrProfileNotFound)
		})
	}
}

func TestLookupProfileByName(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	server := newProfileServer(t, &hits)
	client := NewClient(WithAccountHost(server.URL))

	profile, err := client.LookupProfileByName(context.Background(), "Notch")
	require.NoError(t, err)
	require.Equal(t, testProfileID, profile.ID)
	require.Empty(t, profile.Properties)

	_, err = client.LookupProfileByName(context.Background(), "Notch")
	require.NoError(t, err)
	require.Equal(t, int64(1), hits.Load())
}

func TestTexturesMissingProperty(t *testing.T) {
	t.Parallel()

	profile := &GameProfile{ID: testProfileID, Name: "Notch"}

	_, err := profile.Textures()
	require.ErrorIs(t, err, ErrNoTextures)
}

func TestTexturesBadEncoding(t *testing.T) {
	t.Parallel()

	profile := &GameProfile{
		ID:   testProfileID,
		Name: "Notch",
		Properties: []Property{
			{Name: "textures", Value: "%%% not base64 %%%"},
		},
	}

	_, err := profile.Textures()
	require.Error(t, err)
}
