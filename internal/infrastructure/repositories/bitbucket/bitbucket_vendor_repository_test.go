//go:build unit

package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigit/reposource/internal/domain/entities"
)

func newTestClient(t *testing.T, handler http.Handler) (*BitbucketVendorRepository, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	remote, err := entities.ParseRemoteURL("https://bitbucket.org/myorg/myrepo.git")
	require.NoError(t, err)

	return &BitbucketVendorRepository{
		remote:     remote,
		baseURL:    server.URL,
		token:      "tok",
		httpClient: server.Client(),
	}, server
}

func TestBitbucketListDirectory(t *testing.T) {
	t.Parallel()

	t.Run("should follow the pagination envelope", func(t *testing.T) {
		t.Parallel()

		// given two pages linked through the envelope's next field
		var server *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/repositories/myorg/myrepo/src/main/", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			if r.URL.Query().Get("page") == "2" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"values": []map[string]any{
						{"path": "src/main.go", "type": "commit_file", "size": 42},
					},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []map[string]any{
					{"path": "src", "type": "commit_directory"},
				},
				"next": fmt.Sprintf("%s/repositories/myorg/myrepo/src/main/?page=2", server.URL),
			})
		})
		client, s := newTestClient(t, mux)
		server = s

		// when
		entries, err := client.ListDirectory(context.Background(), "main", "")

		// then
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].IsDir)
		assert.Equal(t, "main.go", entries[1].Name)
		assert.Equal(t, int64(42), entries[1].Size)
	})

	t.Run("should map a 404 with the path context", func(t *testing.T) {
		t.Parallel()

		// given
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))

		// when
		_, err := client.ListDirectory(context.Background(), "main", "missing")

		// then
		require.Error(t, err)
		assert.Equal(t, entities.KindNotFound, entities.KindOf(err))
		assert.Contains(t, err.Error(), "path=missing")
	})
}

func TestBitbucketListCommits(t *testing.T) {
	t.Parallel()

	t.Run("should normalize raw authors and stop at the limit", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repositories/myorg/myrepo/commits/main", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []map[string]any{
					{
						"hash":    "abc",
						"message": "first",
						"date":    "2024-06-01T12:00:00+00:00",
						"author":  map[string]any{"raw": "Alice <alice@example.com>"},
						"parents": []map[string]any{{"hash": "def"}},
					},
					{
						"hash":    "def",
						"message": "second",
						"date":    "2024-06-01T11:00:00+00:00",
						"author":  map[string]any{"raw": "Bob <bob@example.com>"},
					},
				},
			})
		})
		client, _ := newTestClient(t, mux)

		// when
		commits, err := client.ListCommits(context.Background(), "main", 1)

		// then
		require.NoError(t, err)
		require.Len(t, commits, 1)
		assert.Equal(t, "abc", commits[0].SHA)
		assert.Equal(t, "Alice", commits[0].Author.Name)
		assert.Equal(t, "alice@example.com", commits[0].Author.Email)
		assert.Equal(t, []string{"def"}, commits[0].Parents)
	})
}

func TestBitbucketListRefs(t *testing.T) {
	t.Parallel()

	t.Run("should merge branches and tags sorted", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repositories/myorg/myrepo/refs/branches", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []map[string]any{
					{"name": "main", "target": map[string]any{"hash": "c1"}},
				},
			})
		})
		mux.HandleFunc("/repositories/myorg/myrepo/refs/tags", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": []map[string]any{
					{"name": "v0.9.0", "target": map[string]any{"hash": "c2"}},
					{"name": "v0.10.0", "target": map[string]any{"hash": "c3"}},
				},
			})
		})
		client, _ := newTestClient(t, mux)

		// when
		refs, err := client.ListRefs(context.Background())

		// then
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, "main", refs[0].Name)
		assert.Equal(t, "v0.10.0", refs[1].Name)
		assert.Equal(t, "v0.9.0", refs[2].Name)
	})
}

func TestSplitRawAuthor(t *testing.T) {
	t.Parallel()

	t.Run("should split the name and email", func(t *testing.T) {
		t.Parallel()

		name, email := splitRawAuthor("Alice Example <alice@example.com>")
		assert.Equal(t, "Alice Example", name)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("should tolerate a missing email", func(t *testing.T) {
		t.Parallel()

		name, email := splitRawAuthor("Just A Name")
		assert.Equal(t, "Just A Name", name)
		assert.Empty(t, email)
	})
}

func TestBitbucketBaseURL(t *testing.T) {
	t.Parallel()

	t.Run("should use the SaaS API host for bitbucket.org", func(t *testing.T) {
		t.Parallel()

		// given
		remote, err := entities.ParseRemoteURL("https://bitbucket.org/a/b.git")
		require.NoError(t, err)

		// when
		client, err := NewVendorClient(remote, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://api.bitbucket.org/2.0", client.(*BitbucketVendorRepository).baseURL)
	})

	t.Run("should use a path prefix for self-hosted instances", func(t *testing.T) {
		t.Parallel()

		// given
		remote, err := entities.ParseRemoteURL("https://bitbucket.corp.example/a/b.git")
		require.NoError(t, err)

		// when
		client, err := NewVendorClient(remote, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://bitbucket.corp.example/api/2.0",
			client.(*BitbucketVendorRepository).baseURL)
	})
}
