package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/example/photocrop/internal/config"
)

// testConfig creates a minimal config for testing.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Editor: config.EditorConfig{
			FrameWidth:  300,
			FrameHeight: 300,
			ItemExtent:  80,
		},
		Export: config.ExportConfig{
			Quality:     85,
			Concurrency: 2,
		},
		Web: config.WebConfig{
			UploadDir: t.TempDir(),
		},
	}
}

func testHandler(t *testing.T) *EditHandler {
	t.Helper()
	return NewEditHandler(testConfig(t), NewSessionManager())
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

// createTestSession drives the CreateSession handler and returns the id.
func createTestSession(t *testing.T, h *EditHandler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	h.CreateSession(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rec.Code, rec.Body.String())
	}
	id, _ := decodeBody(t, rec)["id"].(string)
	if id == "" {
		t.Fatal("create session returned no id")
	}
	return id
}

// testPNGBytes renders a w x h png, left half red, right half blue.
func testPNGBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

// uploadTestPhoto posts one generated png into the session and returns the
// new photo id.
func uploadTestPhoto(t *testing.T, h *EditHandler, sessionID, name string, w, ht int) string {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photos", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(testPNGBytes(t, w, ht)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = requestWithChiParams(req, map[string]string{"sessionID": sessionID})
	rec := httptest.NewRecorder()
	h.UploadPhotos(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status %d: %s", rec.Code, rec.Body.String())
	}

	added, _ := decodeBody(t, rec)["added"].([]any)
	if len(added) != 1 {
		t.Fatalf("upload added %v, want one id", added)
	}
	id, _ := added[0].(string)
	return id
}

// postJSON drives a handler with a JSON body and chi params.
func postJSON(t *testing.T, handler http.HandlerFunc, method, path string, payload any, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, params)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
