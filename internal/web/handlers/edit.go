package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/example/photocrop/internal/config"
	"github.com/example/photocrop/internal/editor"
	"github.com/example/photocrop/internal/export"
	"github.com/example/photocrop/internal/geometry"
	"github.com/example/photocrop/internal/transcode"
)

// MaxUploadSize caps one multipart upload request.
const MaxUploadSize = 100 << 20 // 100 MB

// EditHandler exposes the crop-and-reorder engine over HTTP.
type EditHandler struct {
	config  *config.Config
	manager *SessionManager
	thumbs  *transcode.Thumbnailer
}

// NewEditHandler creates the handler.
func NewEditHandler(cfg *config.Config, manager *SessionManager) *EditHandler {
	extent := int(cfg.Editor.ItemExtent)
	return &EditHandler{
		config:  cfg,
		manager: manager,
		thumbs:  transcode.NewThumbnailer(extent, extent),
	}
}

// photoView is the wire shape of one photo in a session snapshot.
type photoView struct {
	ID          string           `json:"id"`
	Index       int              `json:"index"`
	SourceRef   string           `json:"source_ref"`
	Transform   editor.Transform `json:"transform"`
	SourceSize  *geometry.Size   `json:"source_size,omitempty"`
	DisplaySize *geometry.Size   `json:"display_size,omitempty"`
}

// sessionView is the wire shape of a full session snapshot.
type sessionView struct {
	ID      string        `json:"id"`
	Frame   geometry.Size `json:"frame"`
	CoverID string        `json:"cover_id,omitempty"`
	Photos  []photoView   `json:"photos"`
}

func snapshot(sess *EditSession) sessionView {
	view := sessionView{
		ID:    sess.ID,
		Frame: sess.Engine.Frame(),
	}
	if cover, ok := sess.Engine.CoverID(); ok {
		view.CoverID = string(cover)
	}
	for i, e := range sess.Engine.Entries() {
		view.Photos = append(view.Photos, photoView{
			ID:          string(e.ID),
			Index:       i,
			SourceRef:   e.SourceRef,
			Transform:   sess.Engine.Transform(e.ID),
			SourceSize:  e.SourceSize,
			DisplaySize: e.DisplaySize,
		})
	}
	return view
}

// session resolves the {sessionID} url parameter, writing a 404 on miss.
func (h *EditHandler) session(w http.ResponseWriter, r *http.Request) *EditSession {
	id := chi.URLParam(r, "sessionID")
	sess, ok := h.manager.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return sess
}

// CreateSession starts a new editing session. The frame defaults to the
// configured crop window and may be overridden in the request body.
func (h *EditHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	req := struct {
		FrameWidth  float64 `json:"frame_width"`
		FrameHeight float64 `json:"frame_height"`
	}{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}
	if req.FrameWidth <= 0 {
		req.FrameWidth = h.config.Editor.FrameWidth
	}
	if req.FrameHeight <= 0 {
		req.FrameHeight = h.config.Editor.FrameHeight
	}

	sess, err := h.manager.Create(req.FrameWidth, req.FrameHeight, h.config.Editor.ItemExtent, h.config.Web.UploadDir)
	if err != nil {
		log.Printf("creating session: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	respondJSON(w, http.StatusCreated, snapshot(sess))
}

// GetSession returns the current session snapshot.
func (h *EditHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	respondJSON(w, http.StatusOK, snapshot(sess))
}

// CloseSession destroys the session and its uploads. Outstanding exports
// observe the cancellation through their request context.
func (h *EditHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.manager.Close(id); err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// SetFrame resizes the crop window, refitting every photo.
func (h *EditHandler) SetFrame(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	req := struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		respondError(w, http.StatusBadRequest, "frame dimensions must be positive")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Engine.SetFrame(req.Width, req.Height)
	respondJSON(w, http.StatusOK, snapshot(sess))
}

// probeImageSize reads just enough of the file to learn its pixel size.
func probeImageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// saveUpload writes one multipart file into the session's upload dir.
func saveUpload(fileHeader *multipart.FileHeader, dir string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	safeName := filepath.Base(fileHeader.Filename)
	path := filepath.Join(dir, safeName)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", safeName, err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", fmt.Errorf("saving %s: %w", safeName, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("saving %s: %w", safeName, err)
	}
	return path, nil
}

// UploadPhotos adds one or more photos to the session from a multipart
// form. Dimensions resolve immediately when the image decodes; a photo
// whose header cannot be read stays in the session without dimensions and
// simply exports as its original.
func (h *EditHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no photos in request")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	var added []string
	for _, fh := range files {
		path, err := saveUpload(fh, sess.UploadDir)
		if err != nil {
			log.Printf("session %s: %v", sess.ID, err)
			respondError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}

		id, err := sess.Engine.AddPhoto(path)
		if errors.Is(err, editor.ErrTooManyPhotos) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to add photo")
			return
		}

		if pw, ph, err := probeImageSize(path); err != nil {
			log.Printf("session %s: cannot size %s: %v", sess.ID, sanitizeForLog(fh.Filename), err)
		} else if err := sess.Engine.ResolveSourceSize(id, float64(pw), float64(ph)); err != nil {
			log.Printf("session %s: resolving %s: %v", sess.ID, id, err)
		}
		added = append(added, string(id))
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"added":   added,
		"session": snapshot(sess),
	})
}

// DeletePhoto removes one photo from the session.
func (h *EditHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := editor.PhotoID(chi.URLParam(r, "photoID"))

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Engine.DeletePhoto(id); err != nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	respondJSON(w, http.StatusOK, snapshot(sess))
}

// gestureRequest is the shared shape of pinch and pan events.
type gestureRequest struct {
	Phase      string  `json:"phase"` // "update" or "end"
	ScaleDelta float64 `json:"scale_delta,omitempty"`
	DX         float64 `json:"dx,omitempty"`
	DY         float64 `json:"dy,omitempty"`
}

// Pinch applies a focal scale delta ("update") or commits the pinch ("end").
func (h *EditHandler) Pinch(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := editor.PhotoID(chi.URLParam(r, "photoID"))

	var req gestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	switch req.Phase {
	case "update":
		sess.Engine.PinchUpdate(id, req.ScaleDelta)
	case "end":
		sess.Engine.PinchEnd(id)
	default:
		respondError(w, http.StatusBadRequest, "phase must be update or end")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transform": sess.Engine.Transform(id)})
}

// Pan applies a translation delta ("update") or commits the pan ("end").
func (h *EditHandler) Pan(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := editor.PhotoID(chi.URLParam(r, "photoID"))

	var req gestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	switch req.Phase {
	case "update":
		sess.Engine.PanUpdate(id, req.DX, req.DY)
	case "end":
		sess.Engine.PanEnd(id)
	default:
		respondError(w, http.StatusBadRequest, "phase must be update or end")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transform": sess.Engine.Transform(id)})
}

// dragRequest drives the thumbnail reorder machine.
type dragRequest struct {
	Phase   string  `json:"phase"` // start, update, end, cancel
	PhotoID string  `json:"photo_id,omitempty"`
	Along   float64 `json:"along"`
	Cross   float64 `json:"cross"`
}

// Drag forwards thumbnail drag lifecycle events to the reorder controller.
func (h *EditHandler) Drag(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	moved := false
	switch req.Phase {
	case "start":
		if err := sess.Engine.DragStart(editor.PhotoID(req.PhotoID)); err != nil {
			respondError(w, http.StatusNotFound, "photo not found")
			return
		}
	case "update":
		sess.Engine.DragUpdate(req.Along, req.Cross)
	case "end":
		moved = sess.Engine.DragEnd(req.Along, req.Cross)
	case "cancel":
		sess.Engine.DragCancel()
	default:
		respondError(w, http.StatusBadRequest, "phase must be start, update, end or cancel")
		return
	}

	resp := map[string]any{"moved": moved, "session": snapshot(sess)}
	if dragSess, ok := sess.Engine.DragSession(); ok {
		resp["drag"] = map[string]any{
			"dragged_id":     string(dragSess.DraggedID),
			"original_index": dragSess.OriginalIndex,
			"target_index":   dragSess.TargetIndex,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Thumbnail serves a cover-cropped preview of one photo for the strip.
func (h *EditHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := editor.PhotoID(chi.URLParam(r, "photoID"))

	sess.Lock()
	entry, ok := func() (*editor.PhotoEntry, bool) {
		for _, e := range sess.Engine.Entries() {
			if e.ID == id {
				return e, true
			}
		}
		return nil, false
	}()
	sess.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	data, err := h.thumbs.Render(entry.SourceRef)
	if err != nil {
		log.Printf("session %s: thumbnail %s: %v", sess.ID, id, err)
		respondError(w, http.StatusInternalServerError, "failed to render thumbnail")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Export crops every photo in final order and returns the ordered output
// references. Failures fall back per photo, so the response always matches
// the session's photo count.
func (h *EditHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	outDir := filepath.Join(sess.UploadDir, "export")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Printf("session %s: %v", sess.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to prepare export directory")
		return
	}

	transcoder := transcode.NewFileTranscoder(outDir, h.config.Export.Quality)
	exporter := export.New(transcoder)

	sess.Lock()
	defer sess.Unlock()
	result := exporter.Export(r.Context(), sess.Engine, export.Options{
		MaxWidth:    h.config.Export.MaxWidth,
		Concurrency: h.config.Export.Concurrency,
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"refs":        result.Refs,
		"cover_index": result.CoverIndex,
		"failures":    len(result.Errors),
	})
}
