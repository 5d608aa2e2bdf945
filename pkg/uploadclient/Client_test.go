package uploadclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSite struct {
	mu           sync.Mutex
	server       *httptest.Server
	storageCode  int
	registerCode int
	stored       map[string]string
	registered   []registerPhotoRequest
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()

	site := &fakeSite{
		storageCode:  http.StatusOK,
		registerCode: http.StatusOK,
		stored:       map[string]string{},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("email") != "admin@example.com" || r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "portfolioadmin", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/admin", http.StatusFound)
	})

	mux.HandleFunc("POST /admin/photos/upload-url", func(w http.ResponseWriter, r *http.Request) {
		if !site.authorized(w, r) {
			return
		}

		request := uploadURLRequest{}
		_ = json.NewDecoder(r.Body).Decode(&request)

		path := request.PublicationID + "/1-" + request.FileName
		_ = json.NewEncoder(w).Encode(uploadURLResponse{
			SignedURL: site.server.URL + "/storage/" + path,
			Path:      path,
		})
	})

	mux.HandleFunc("PUT /storage/", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)

		site.mu.Lock()
		defer site.mu.Unlock()

		if site.storageCode == http.StatusOK {
			site.stored[strings.TrimPrefix(r.URL.Path, "/storage/")] = string(b)
		}

		w.WriteHeader(site.storageCode)
	})

	mux.HandleFunc("POST /admin/photos", func(w http.ResponseWriter, r *http.Request) {
		if !site.authorized(w, r) {
			return
		}

		request := registerPhotoRequest{}
		_ = json.NewDecoder(r.Body).Decode(&request)

		if site.registerCode != http.StatusOK {
			w.WriteHeader(site.registerCode)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "publication not found"})
			return
		}

		site.mu.Lock()
		site.registered = append(site.registered, request)
		site.mu.Unlock()

		_, _ = w.Write([]byte(`{"success":true}`))
	})

	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)

	return site
}

func (s *fakeSite) authorized(w http.ResponseWriter, r *http.Request) bool {
	if cookie, err := r.Cookie("portfolioadmin"); err == nil && cookie.Value == "ok" {
		return true
	}

	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: "Unauthorized"})
	return false
}

func newLoggedInClient(t *testing.T, site *fakeSite) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{BaseURL: site.server.URL})
	require.NoError(t, err)
	require.NoError(t, client.Login(t.Context(), "admin@example.com", "secret"))

	return client
}

func TestClient_Login(t *testing.T) {
	site := newFakeSite(t)

	client, err := NewClient(ClientConfig{BaseURL: site.server.URL + "/"})
	require.NoError(t, err)

	assert.ErrorIs(t, client.Login(t.Context(), "admin@example.com", "wrong"), ErrLoginFailed)
	assert.NoError(t, client.Login(t.Context(), "admin@example.com", "secret"))
}

func TestClient_UploadPhoto(t *testing.T) {
	t.Run("runs the three steps and reports progress", func(t *testing.T) {
		site := newFakeSite(t)
		client := newLoggedInClient(t, site)

		content := strings.Repeat("x", 64*1024)
		reported := []float64{}

		err := client.UploadPhoto(t.Context(), UploadRequest{
			PublicationID: "pub-1",
			FileName:      "a.jpg",
			ContentType:   "image/jpeg",
			Alt:           "waves",
			DisplayOrder:  2,
			Body:          strings.NewReader(content),
			Size:          int64(len(content)),
		}, func(fraction float64) {
			reported = append(reported, fraction)
		})

		require.NoError(t, err)
		assert.Equal(t, content, site.stored["pub-1/1-a.jpg"])

		require.Len(t, site.registered, 1)
		assert.Equal(t, registerPhotoRequest{PublicationID: "pub-1", Path: "pub-1/1-a.jpg", Alt: "waves", DisplayOrder: 2}, site.registered[0])

		require.NotEmpty(t, reported)
		assert.Equal(t, 1.0, reported[len(reported)-1])
		assert.IsNonDecreasing(t, reported)
	})

	t.Run("storage rejection is an upload failure and nothing is registered", func(t *testing.T) {
		site := newFakeSite(t)
		site.storageCode = http.StatusForbidden
		client := newLoggedInClient(t, site)

		err := client.UploadPhoto(t.Context(), UploadRequest{
			PublicationID: "pub-1",
			FileName:      "a.jpg",
			Body:          strings.NewReader("x"),
			Size:          1,
		}, nil)

		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Empty(t, site.registered)
	})

	t.Run("register failure returns the server message", func(t *testing.T) {
		site := newFakeSite(t)
		site.registerCode = http.StatusNotFound
		client := newLoggedInClient(t, site)

		err := client.UploadPhoto(t.Context(), UploadRequest{
			PublicationID: "pub-1",
			FileName:      "a.jpg",
			Body:          strings.NewReader("x"),
			Size:          1,
		}, nil)

		require.Error(t, err)
		assert.Equal(t, "publication not found", err.Error())
	})

	t.Run("without a session the server message is returned", func(t *testing.T) {
		site := newFakeSite(t)

		client, err := NewClient(ClientConfig{BaseURL: site.server.URL})
		require.NoError(t, err)

		err = client.UploadPhoto(t.Context(), UploadRequest{PublicationID: "pub-1", FileName: "a.jpg", Body: strings.NewReader("x"), Size: 1}, nil)
		require.Error(t, err)
		assert.Equal(t, "Unauthorized", err.Error())
	})
}
