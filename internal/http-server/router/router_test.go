package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront-media/internal/domain"
	"storefront-media/internal/http-server/handler/upload"
	"storefront-media/internal/http-server/handler/upload/dto"
	fs_repo "storefront-media/internal/repository/artifact/fs"
	media_uc "storefront-media/internal/usecase/media"
	"storefront-media/internal/usecase/processor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
	xwebp "golang.org/x/image/webp"
)

func TestMain(m *testing.M) {
	zlog.Init()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testServer struct {
	dir     string
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := zlog.Zerolog(zerolog.New(io.Discard))

	repo := fs_repo.NewFileRepository(dir)
	proc := processor.NewImageProcessor(repo, &logger)
	resolver := media_uc.NewURLResolver("", "/uploads", "/placeholder.png")
	uc := media_uc.NewMediaUsecase(proc, repo, resolver, &logger)

	return &testServer{
		dir: dir,
		handler: SetupRouter(&Handler{
			UploadHandler:  upload.NewUploadHandler(uc, &logger),
			AllowedOrigins: []string{"*"},
			PublicPrefix:   "/uploads",
		}),
	}
}

func (s *testServer) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	body, ct := multipartBody(t, "image", filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload/image", body)
	req.Header.Set("Content-Type", ct)
	return req
}

func pngBytes(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: alpha})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeUpload(t *testing.T, rec *httptest.ResponseRecorder) dto.UploadResponse {
	t.Helper()
	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestUpload_OpaqueImageReturnsWebP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "beer.png", "image/png", pngBytes(t, 2000, 2000, 255)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeUpload(t, rec)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasSuffix(resp.Filename, ".webp"))
	assert.Equal(t, "/uploads/"+resp.Filename, resp.URL)

	f, err := os.Open(filepath.Join(s.dir, resp.Filename))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := xwebp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 1200, cfg.Height)

	names := s.files(t)
	require.Len(t, names, 2)
	assert.Contains(t, names, resp.Filename)
	var primary string
	for _, n := range names {
		if n != resp.Filename {
			primary = n
		}
	}
	assert.Equal(t, ".png", filepath.Ext(primary))
}

func TestUpload_TransparentImageKeepsPNG(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "logo.png", "image/png", pngBytes(t, 500, 500, 128)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeUpload(t, rec)
	assert.Equal(t, ".png", filepath.Ext(resp.Filename))
	assert.Equal(t, []string{resp.Filename}, s.files(t))

	f, err := os.Open(filepath.Join(s.dir, resp.Filename))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Width)
	assert.Equal(t, 500, cfg.Height)
}

func TestUpload_RejectsNonImage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "only image files are allowed", decodeError(t, rec))
	assert.Empty(t, s.files(t))
}

func TestUpload_MissingFile(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartBody(t, "other", "a.png", "image/png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload/image", body)
	req.Header.Set("Content-Type", ct)

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No image file provided", decodeError(t, rec))
}

func TestUpload_NotMultipart(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload/image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request format", decodeError(t, rec))
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t)

	data := bytes.Repeat([]byte{0xAB}, domain.MaxUploadSize+1)
	rec := s.do(uploadRequest(t, "huge.png", "image/png", data))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File too large (max 5 MB)", decodeError(t, rec))
	assert.Empty(t, s.files(t))
}

func TestUpload_CorruptImage(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "broken.png", "image/png", []byte("not really a png")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to process image", decodeError(t, rec))
	assert.Empty(t, s.files(t))
}

func TestUpload_ServedFromPublicPrefix(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "logo.png", "image/png", pngBytes(t, 40, 30, 100)))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeUpload(t, rec)

	get := s.do(httptest.NewRequest(http.MethodGet, resp.URL, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "image/png", get.Header().Get("Content-Type"))

	listing := s.do(httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, listing.Code)
}

func TestServe_MissingArtifact(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/uploads/nope.webp", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/uploads/.hidden", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_LongOriginalNameAccepted(t *testing.T) {
	s := newTestServer(t)

	name := strings.Repeat("n", 400) + ".png"
	rec := s.do(uploadRequest(t, name, "image/png", pngBytes(t, 10, 10, 50)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeUpload(t, rec)
	assert.NotContains(t, resp.Filename, "nnnn")
	assert.Len(t, s.files(t), 1)
}

func TestDelete_RemovesFile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(uploadRequest(t, "logo.png", "image/png", pngBytes(t, 20, 20, 10)))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeUpload(t, rec)

	del := s.do(httptest.NewRequest(http.MethodDelete, "/api/admin/upload/image/"+resp.Filename, nil))
	assert.Equal(t, http.StatusNoContent, del.Code)
	assert.Empty(t, s.files(t))
}

func TestDelete_MissingFileStillSucceeds(t *testing.T) {
	s := newTestServer(t)

	del := s.do(httptest.NewRequest(http.MethodDelete, "/api/admin/upload/image/nope.webp", nil))
	assert.Equal(t, http.StatusNoContent, del.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
