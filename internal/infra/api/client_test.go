package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/insight-cli/internal/domain/apierrors"
	"github.com/bryanwahyu/insight-cli/internal/domain/files"
	"github.com/bryanwahyu/insight-cli/internal/domain/session"
	"github.com/bryanwahyu/insight-cli/internal/infra/sessionstore"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := sessionstore.NewFile(filepath.Join(t.TempDir(), "session.json"))
	return New(srv.URL, 5*time.Second, store, nil), store
}

func loggedIn(t *testing.T, store session.Store, token string) {
	t.Helper()
	require.NoError(t, store.Save(session.Session{Credential: token, DisplayName: "alice"}))
}

func TestHistoryCarriesBearerCredential(t *testing.T) {
	var gotAuth, gotRequestID string

	mux := chi.NewRouter()
	mux.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]*files.UploadedFile{
			{ID: 1, Filename: "a.txt", UploadTimestamp: time.Now().UTC()},
		})
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok123")

	list, err := client.History(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Could not validate credentials"}`, http.StatusUnauthorized)
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "expired")

	var hookFired atomic.Int32
	client.OnUnauthorized(func() { hookFired.Add(1) })

	_, err := client.History(context.Background())
	assert.ErrorIs(t, err, apierrors.ErrUnauthorized)
	assert.Equal(t, int32(1), hookFired.Load())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "an expired credential must be dropped")
}

func TestLoginRejectionIsNotSessionExpiry(t *testing.T) {
	mux := chi.NewRouter()
	mux.Post("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostFormValue("username"))
		assert.Equal(t, "wrong", r.PostFormValue("password"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	})

	client, _ := newTestClient(t, mux)

	var hookFired atomic.Int32
	client.OnUnauthorized(func() { hookFired.Add(1) })

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var reqErr *apierrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Incorrect username or password", err.Error())
	assert.Equal(t, int32(0), hookFired.Load(), "no credential was presented, nothing expired")
}

func TestLoginParsesIssuedToken(t *testing.T) {
	mux := chi.NewRouter()
	mux.Post("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "token_type": "bearer"})
	})

	client, _ := newTestClient(t, mux)

	token, err := client.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestRegisterPostsJSONBody(t *testing.T) {
	mux := chi.NewRouter()
	mux.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob", body.Username)
		assert.Equal(t, "pw", body.Password)
		w.WriteHeader(http.StatusCreated)
	})

	client, _ := newTestClient(t, mux)
	require.NoError(t, client.Register(context.Background(), "bob", "pw"))
}

func TestRegisterConflictSurfacesDetail(t *testing.T) {
	mux := chi.NewRouter()
	mux.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Username already registered"})
	})

	client, _ := newTestClient(t, mux)
	err := client.Register(context.Background(), "bob", "pw")
	require.Error(t, err)
	assert.Equal(t, "Username already registered", err.Error())
}

func TestErrorWithoutDetailFallsBackToStatusMessage(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok")

	_, err := client.History(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
}

func TestAnalyzeSendsMultipartFileAndPrompt(t *testing.T) {
	mux := chi.NewRouter()
	mux.Post("/analyze", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.csv", header.Filename)

		assert.Contains(t, r.FormValue("prompt"), "Statistical summary")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&files.UploadedFile{
			ID:         7,
			Filename:   "notes.csv",
			AIResponse: &files.AnalysisResult{ID: 9, ResponseText: "## Findings"},
		})
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok")

	prompt := "Analyze this spreadsheet file ... Statistical summary of numerical data"
	uploaded, err := client.Analyze(context.Background(), "notes.csv", strings.NewReader("a,b\n1,2"), prompt)
	require.NoError(t, err)
	assert.Equal(t, files.FileID(7), uploaded.ID)
	require.NotNil(t, uploaded.AIResponse)
	assert.Equal(t, files.ResultID(9), uploaded.AIResponse.ID)
}

func TestDeleteTargetsFilePath(t *testing.T) {
	var gotPath string
	mux := chi.NewRouter()
	mux.Delete("/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok")

	require.NoError(t, client.Delete(context.Background(), 5))
	assert.Equal(t, "/files/5", gotPath)
}

func TestDownloadNotFoundSurfacesDetailOnce(t *testing.T) {
	var calls atomic.Int32
	mux := chi.NewRouter()
	mux.Get("/download/{id}/{format}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok")

	_, _, err := client.Download(context.Background(), 42, files.FormatPDF)
	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
	assert.Equal(t, int32(1), calls.Load(), "no retry")
	assert.False(t, errors.Is(err, apierrors.ErrUnauthorized))
}

func TestDownloadStreamsBinaryBody(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/download/{id}/{format}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/42/txt", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain analysis"))
	})

	client, store := newTestClient(t, mux)
	loggedIn(t, store, "tok")

	body, contentType, err := client.Download(context.Background(), 42, files.FormatTXT)
	require.NoError(t, err)
	defer body.Close()

	data := make([]byte, 64)
	n, _ := body.Read(data)
	assert.Equal(t, "plain analysis", string(data[:n]))
	assert.Equal(t, "text/plain", contentType)
}
