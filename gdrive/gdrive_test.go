package gdrive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/elemental-reasoning/gdevutils/session"
)

func TestTypeQuery(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     string
	}{
		{
			name:     "spreadsheet",
			mimeType: MimeTypeSheet,
			want:     "mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		},
		{
			name:     "plain text",
			mimeType: "text/plain",
			want:     "mimeType = 'text/plain' and trashed = false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeQuery(tt.mimeType))
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"})),
	)
	require.NoError(t, err)

	sess := session.NewSession(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"}))
	sess.SetRateLimit(session.ServiceDrive, session.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
	return NewWithService(svc, sess)
}

func TestFilesOfType_FollowsPagination(t *testing.T) {
	var queries []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(&drive.FileList{
				Files:         []*drive.File{{Id: "f1", Name: "roster", MimeType: MimeTypeSheet}},
				NextPageToken: "next",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(&drive.FileList{
			Files: []*drive.File{{Id: "f2", Name: "budget", MimeType: MimeTypeSheet}},
		})
	}))

	files, err := client.FilesOfType(context.Background(), MimeTypeSheet)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "roster", files[0].Name)
	assert.Equal(t, "budget", files[1].Name)

	require.Len(t, queries, 2)
	assert.Equal(t, TypeQuery(MimeTypeSheet), queries[0])
}

func TestCreateFile(t *testing.T) {
	t.Run("uses provided name", func(t *testing.T) {
		var gotBody drive.File
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(&drive.File{Id: "new-id", Name: gotBody.Name})
		}))

		created, err := client.CreateFile(context.Background(), "notes", nil)
		require.NoError(t, err)
		assert.Equal(t, "new-id", created.Id)
		assert.Equal(t, "notes", gotBody.Name)
	})

	t.Run("defaults to untitled", func(t *testing.T) {
		var gotBody drive.File
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(&drive.File{Id: "new-id", Name: gotBody.Name})
		}))

		_, err := client.CreateFile(context.Background(), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "untitled", gotBody.Name)
	})
}
