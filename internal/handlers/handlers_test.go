package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"snapfeed/internal/models"
	"snapfeed/internal/render"
	"snapfeed/internal/services"
	"snapfeed/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePosts struct {
	posts     []models.Post
	recentErr error
	createErr error
	keyErr    error
	keys      map[uint]string
	created   []string
}

func (f *fakePosts) Recent(context.Context, int) ([]models.Post, error) {
	return f.posts, f.recentErr
}

func (f *fakePosts) Create(_ context.Context, text, key string) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, text+"|"+key)
	return &models.Post{ID: uint(len(f.created)), TextContent: text, S3Key: key}, nil
}

func (f *fakePosts) ImageKey(_ context.Context, id uint) (string, error) {
	if f.keyErr != nil {
		return "", f.keyErr
	}
	key, ok := f.keys[id]
	if !ok {
		return "", services.ErrPostNotFound
	}
	return key, nil
}

func (f *fakePosts) Ping(context.Context) error { return f.recentErr }

type fakeUploader struct {
	err   error
	calls int
}

func (u *fakeUploader) Upload(context.Context, multipart.File, *multipart.FileHeader) (*services.ImageUploadResult, error) {
	u.calls++
	if u.err != nil {
		return nil, u.err
	}
	return &services.ImageUploadResult{Key: "uploads/fixed.png", ContentType: "image/png", Size: 3}, nil
}

type fakeStore struct {
	objects map[string]string
	err     error
}

func (s *fakeStore) Put(context.Context, string, io.Reader, int64, string) error { return s.err }

func (s *fakeStore) Get(_ context.Context, key string) (*storage.Object, error) {
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(strings.NewReader(body)),
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
	}, nil
}

func newEngine(t *testing.T, posts PostRepository, uploader Uploader, store storage.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	renderer, err := render.New()
	require.NoError(t, err)
	r.HTMLRender = renderer

	ph := NewPostHandler(posts, uploader)
	ih := NewImageHandler(posts, store)
	hh := NewHealthHandler(posts)
	r.GET("/", ph.List)
	r.POST("/submit", ph.Create)
	r.GET("/image/:id", ih.Proxy)
	r.GET("/healthcheck", hh.Live)
	r.GET("/dbcheck", hh.Ready)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validSubmit(t *testing.T) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("text_content", "hello"))
	part, err := w.CreateFormFile("photo", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListRendersPosts(t *testing.T) {
	posts := &fakePosts{posts: []models.Post{
		{ID: 2, TextContent: "second", S3Key: "uploads/2.png", CreatedAt: time.Now()},
		{ID: 1, TextContent: "first", CreatedAt: time.Now()},
	}}
	r := newEngine(t, posts, &fakeUploader{}, &fakeStore{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "second")
	assert.Contains(t, body, `src="/image/2"`)
	assert.NotContains(t, body, `src="/image/1"`)
}

func TestListDegradesOnStoreError(t *testing.T) {
	r := newEngine(t, &fakePosts{recentErr: errors.New("connection refused")}, &fakeUploader{}, &fakeStore{})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nothing posted yet.")
}

func TestCreateHappyPath(t *testing.T) {
	posts := &fakePosts{}
	r := newEngine(t, posts, &fakeUploader{}, &fakeStore{})

	w := serve(r, validSubmit(t))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []string{"hello|uploads/fixed.png"}, posts.created)
}

func TestCreateUploadFailureSkipsInsert(t *testing.T) {
	posts := &fakePosts{}
	uploader := &fakeUploader{err: storage.ErrNotConfigured}
	r := newEngine(t, posts, uploader, &fakeStore{})

	w := serve(r, validSubmit(t))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, uploader.calls)
	assert.Empty(t, posts.created)
}

func TestCreateInsertFailureStillRedirects(t *testing.T) {
	posts := &fakePosts{createErr: errors.New("deadlock")}
	r := newEngine(t, posts, &fakeUploader{}, &fakeStore{})

	w := serve(r, validSubmit(t))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestCreateValidationErrorFromUploader(t *testing.T) {
	posts := &fakePosts{}
	r := newEngine(t, posts, &fakeUploader{err: services.ErrNotImage}, &fakeStore{})

	w := serve(r, validSubmit(t))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, posts.created)
}

func TestProxyStatuses(t *testing.T) {
	posts := &fakePosts{keys: map[uint]string{1: "uploads/1.jpg", 2: "uploads/gone.jpg"}}
	store := &fakeStore{objects: map[string]string{"uploads/1.jpg": "jpegbytes"}}
	r := newEngine(t, posts, &fakeUploader{}, store)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/image/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpegbytes", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "9", w.Header().Get("Content-Length"))
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; sandbox", w.Header().Get("Content-Security-Policy"))

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/image/2", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/image/3", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/image/-3", nil)).Code)
}

func TestProxyServerErrors(t *testing.T) {
	dbDown := newEngine(t, &fakePosts{keyErr: errors.New("timeout")}, &fakeUploader{}, &fakeStore{})
	assert.Equal(t, http.StatusInternalServerError, serve(dbDown, httptest.NewRequest(http.MethodGet, "/image/1", nil)).Code)

	posts := &fakePosts{keys: map[uint]string{1: "uploads/1.jpg"}}
	storeDown := newEngine(t, posts, &fakeUploader{}, &fakeStore{err: errors.New("access denied")})
	assert.Equal(t, http.StatusInternalServerError, serve(storeDown, httptest.NewRequest(http.MethodGet, "/image/1", nil)).Code)

	unconfigured := newEngine(t, posts, &fakeUploader{}, storage.Unconfigured{})
	assert.Equal(t, http.StatusInternalServerError, serve(unconfigured, httptest.NewRequest(http.MethodGet, "/image/1", nil)).Code)
}

func TestProxyWithoutStorageSkipsLookup(t *testing.T) {
	// ImageKey would fail the test with 404 if it were consulted
	posts := &fakePosts{keys: map[uint]string{}}
	r := newEngine(t, posts, &fakeUploader{}, storage.Unconfigured{})

	for _, path := range []string{"/image/1", "/image/999", "/image/abc"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
	}
}

func TestHealth(t *testing.T) {
	up := newEngine(t, &fakePosts{}, &fakeUploader{}, &fakeStore{})
	assert.Equal(t, "ok", serve(up, httptest.NewRequest(http.MethodGet, "/healthcheck", nil)).Body.String())
	assert.Equal(t, "db ok", serve(up, httptest.NewRequest(http.MethodGet, "/dbcheck", nil)).Body.String())

	down := newEngine(t, &fakePosts{recentErr: errors.New("dial tcp: refused")}, &fakeUploader{}, &fakeStore{})
	assert.Equal(t, http.StatusOK, serve(down, httptest.NewRequest(http.MethodGet, "/healthcheck", nil)).Code)
	w := serve(down, httptest.NewRequest(http.MethodGet, "/dbcheck", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "dial tcp: refused", w.Body.String())
}
