package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, handler http.Handler) *Agent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewAgent(srv.URL+"/", "sekrit")
}

func TestAgentList(t *testing.T) {
	var gotAuth, gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/list", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Query().Get("path")
		_ = json.NewEncoder(w).Encode([]Entry{
			{Name: "a.jar", Path: "mods/a.jar", Size: 42},
			{Name: "sub", Path: "mods/sub", Dir: true},
		})
	})

	a := newTestAgent(t, mux)
	entries, err := a.List(context.Background(), "mods")
	require.NoError(t, err)

	assert.Equal(t, "Bearer sekrit", gotAuth)
	assert.Equal(t, "mods", gotPath)
	require.Len(t, entries, 2)
	assert.Equal(t, "mods/a.jar", entries[0].Path)
	assert.Equal(t, int64(42), entries[0].Size)
	assert.True(t, entries[1].Dir)
}

func TestAgentRead(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/read", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") != "server.properties" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("motd=hello"))
	})

	a := newTestAgent(t, mux)
	ctx := context.Background()

	data, err := a.Read(ctx, "server.properties")
	require.NoError(t, err)
	assert.Equal(t, "motd=hello", string(data))

	// The agent's 404 surfaces as the portable not-exist sentinel
	_, err = a.Read(ctx, "config/missing.toml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotExist))
	assert.Contains(t, err.Error(), "config/missing.toml")
}

func TestAgentWrite(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/write", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Query().Get("path")
		gotBody, _ = io.ReadAll(r.Body)
	})

	a := newTestAgent(t, mux)
	require.NoError(t, a.Write(context.Background(), "config/new.toml", []byte("value = 1")))

	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "config/new.toml", gotPath)
	assert.Equal(t, "value = 1", string(gotBody))
}

func TestAgentMove(t *testing.T) {
	var gotFrom, gotTo string
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/move", func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
	})

	a := newTestAgent(t, mux)
	require.NoError(t, a.Move(context.Background(), "stage/config", "config"))

	assert.Equal(t, "stage/config", gotFrom)
	assert.Equal(t, "config", gotTo)
}

func TestAgentDelete(t *testing.T) {
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/delete", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Query().Get("path")
	})

	a := newTestAgent(t, mux)
	require.NoError(t, a.Delete(context.Background(), "mods/old.jar"))
	assert.Equal(t, "mods/old.jar", gotPath)
}

func TestAgentDownload(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/download", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	a := newTestAgent(t, mux)
	err := a.Download(context.Background(), "mods/a.jar", "https://cdn.test/a.jar", "da39a3ee5e6b4b0d3255bfef95601890afd80709")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"path": "mods/a.jar",
		"url":  "https://cdn.test/a.jar",
		"sha1": "da39a3ee5e6b4b0d3255bfef95601890afd80709",
	}, got)
}

func TestAgentErrorStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fs/mkdir", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	a := newTestAgent(t, mux)
	err := a.Mkdir(context.Background(), "mods")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotExist), "only 404 maps to the not-exist sentinel")
}
