package handlers_test

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/cache"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/router"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret"
	testCSRFToken = "test-csrf-token"
)

type testApp struct {
	t      *testing.T
	e      *echo.Echo
	store  *memStore
	cache  *cache.MemoryPageCache
	images *storage.LocalImageStore
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithFirebase(t, nil)
}

func newTestAppWithFirebase(t *testing.T, verifier firebase.TokenVerifier) *testApp {
	t.Helper()
	app := &testApp{
		t:      t,
		e:      echo.New(),
		store:  newMemStore(),
		cache:  cache.NewMemoryPageCache(time.Minute),
		images: storage.NewLocalImageStore(t.TempDir()),
	}
	deps := &router.Deps{
		Users:      app.store,
		Groups:     app.store,
		Posts:      app.store,
		Comments:   app.store,
		Follows:    app.store,
		Images:     app.images,
		PageCache:  app.cache,
		JWTSecret:  testSecret,
		SessionTTL: time.Hour,
	}
	if verifier != nil {
		deps.Firebase = verifier
	}
	require.NoError(t, router.SetupRoutes(app.e, deps))
	return app
}

func (a *testApp) user(username string) *models.User {
	a.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(a.t, a.store.CreateUser(a.t.Context(), u))
	return u
}

func (a *testApp) group(title, slug string) *models.Group {
	a.t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: "about " + title}
	require.NoError(a.t, a.store.CreateGroup(a.t.Context(), g))
	return g
}

func (a *testApp) post(author *models.User, text string, group *models.Group) *models.Post {
	a.t.Helper()
	p := &models.Post{AuthorID: author.ID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(a.t, a.store.CreatePost(a.t.Context(), p))
	return p
}

// request runs one request as user (nil for anonymous).
func (a *testApp) request(method, target string, body io.Reader, contentType string, user *models.User) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if user != nil {
		token, err := middleware.SignSessionToken(testSecret, user, time.Hour)
		require.NoError(a.t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	withCSRF(req)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// withCSRF gives unsafe requests the token pair a rendered form would submit.
func withCSRF(req *http.Request) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return
	}
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookie, Value: testCSRFToken})
	req.Header.Set(echo.HeaderXCSRFToken, testCSRFToken)
}

func (a *testApp) get(target string, user *models.User) *httptest.ResponseRecorder {
	return a.request(http.MethodGet, target, nil, "", user)
}

func (a *testApp) postForm(target string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	return a.request(http.MethodPost, target, strings.NewReader(values.Encode()), echo.MIMEApplicationForm, user)
}

// postMultipart submits fields plus an optional "image" file.
func (a *testApp) postMultipart(target string, fields map[string]string, fileName string, data []byte, user *models.User) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("image", fileName)
		require.NoError(a.t, err)
		_, err = fw.Write(data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())
	return a.request(http.MethodPost, target, &buf, w.FormDataContentType(), user)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func (a *testApp) requestWithCookie(method, target string, body io.Reader, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	withCSRF(req)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}
