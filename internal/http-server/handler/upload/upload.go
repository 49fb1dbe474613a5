package upload

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"storefront-media/internal/domain"
	"storefront-media/internal/http-server/handler/upload/dto"
	repoArtifact "storefront-media/internal/repository/artifact"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type UploadHandler struct {
	usecase   mediaUsecase
	validate  *validator.Validate
	logger    *zlog.Zerolog
	fieldName string
	maxSize   int64
}

func NewUploadHandler(usecase mediaUsecase, logger *zlog.Zerolog) *UploadHandler {
	return &UploadHandler{
		usecase:   usecase,
		validate:  validator.New(),
		logger:    logger,
		fieldName: domain.UploadFieldName,
		maxSize:   domain.MaxUploadSize,
	}
}

type filePart struct {
	data        []byte
	filename    string
	contentType string
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	part, err := h.readFilePart(r)
	if err != nil {
		h.handleReadError(w, err)
		return
	}

	req := dto.UploadRequest{
		Filename:    part.filename,
		ContentType: part.contentType,
		Size:        int64(len(part.data)),
	}
	if err := h.validateRequest(req); err != nil {
		h.logger.Warn().
			Err(err).
			Str("filename", req.Filename).
			Str("content_type", req.ContentType).
			Msg("Upload rejected")
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.usecase.UploadImage(ctx, part.data, part.filename)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", part.filename).Msg("Upload failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to process image")
		return
	}

	h.logger.Info().
		Str("original_name", part.filename).
		Str("filename", result.Filename).
		Str("kind", string(result.Kind)).
		Int64("size", req.Size).
		Msg("Image uploaded successfully")

	h.respondJSON(w, http.StatusOK, dto.UploadResponse{
		Success:  true,
		Filename: result.Filename,
		URL:      h.usecase.PublicPath(result.Filename),
	})
}

// DeleteImage always answers 204; cleanup is best-effort.
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	h.usecase.DeleteImage(r.Context(), chi.URLParam(r, "filename"))
	w.WriteHeader(http.StatusNoContent)
}

// ServeImage streams a stored artifact; range and conditional headers are
// handled by http.ServeContent.
func (h *UploadHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	rc, err := h.usecase.OpenImage(r.Context(), filename)
	if err != nil {
		if errors.Is(err, repoArtifact.ErrArtifactNotFound) || errors.Is(err, repoArtifact.ErrInvalidFilename) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error().Err(err).Str("filename", filename).Msg("Failed to open artifact")
		h.respondError(w, http.StatusInternalServerError, "Failed to read image")
		return
	}
	defer rc.Close()

	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, filename, time.Time{}, rc)
}

// readFilePart streams the multipart body and keeps only the configured
// field in memory. Reading stops one byte past the size limit.
func (h *UploadHandler) readFilePart(r *http.Request) (*filePart, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrInvalidUpload
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingFile
		}
		if err != nil {
			return nil, classifyReadError(err)
		}

		if part.FormName() != h.fieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxSize+1))
		part.Close()
		if err != nil {
			return nil, classifyReadError(err)
		}
		if int64(len(data)) > h.maxSize {
			return nil, ErrFileTooLarge
		}

		return &filePart{
			data:        data,
			filename:    part.FileName(),
			contentType: normalizeContentType(part.Header.Get("Content-Type")),
		}, nil
	}
}

func (h *UploadHandler) validateRequest(req dto.UploadRequest) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrInvalidUpload
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "ContentType":
			return ErrNotImage
		case "Size":
			return ErrMissingFile
		}
	}
	return ErrInvalidUpload
}

func (h *UploadHandler) handleReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		h.logger.Warn().Int64("max_size", h.maxSize).Msg("File too large")
		h.respondError(w, http.StatusRequestEntityTooLarge, "File too large (max 5 MB)")
	case errors.Is(err, ErrMissingFile):
		h.logger.Warn().Msg("File not found in request")
		h.respondError(w, http.StatusBadRequest, "No image file provided")
	default:
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format")
	}
}

func classifyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrFileTooLarge
	}
	return errors.Join(ErrInvalidUpload, err)
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

func (h *UploadHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *UploadHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, dto.ErrorResponse{Error: message})
}
