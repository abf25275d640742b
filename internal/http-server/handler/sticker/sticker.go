package sticker

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"sticker-processor/internal/domain"
	"sticker-processor/internal/http-server/handler/sticker/dto"
	sticker_uc "sticker-processor/internal/usecase/sticker"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxMemory = 32 << 20

var allowedExtensions = map[string]bool{
	".tgs":    true,
	".lottie": true,
	".webm":   true,
	".webp":   true,
	".gif":    true,
	".png":    true,
	".jpg":    true,
	".jpeg":   true,
}

type StickerHandler struct {
	usecase  stickerUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewStickerHandler(usecase stickerUsecase, logger *zlog.Zerolog) *StickerHandler {
	return &StickerHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *StickerHandler) UploadSticker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, domain.DefaultMaxUploadSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("File not found in request")
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	if err := h.validateFile(handler); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	req := dto.UploadRequest{
		AnimationFormat:  r.FormValue("animation_format"),
		TransparentColor: strings.TrimPrefix(r.FormValue("transparent_color"), "#"),
	}
	req.MaxWidth, _ = strconv.Atoi(r.FormValue("max_width"))
	req.MaxHeight, _ = strconv.Atoi(r.FormValue("max_height"))

	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid conversion parameters", err)
		return
	}

	opts, err := h.conversionOptions(req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s, err := h.usecase.SubmitSticker(ctx, file, handler.Filename, handler.Size, opts)
	if err != nil {
		h.handleUploadError(w, err, handler.Filename)
		return
	}

	response := dto.UploadResponse{
		ID:        s.ID,
		Filename:  s.OriginalFilename,
		Status:    string(s.Status),
		Size:      s.OriginalSize,
		CreatedAt: s.CreatedAt,
	}

	h.logger.Info().
		Str("sticker_id", s.ID).
		Str("filename", s.OriginalFilename).
		Str("status", string(s.Status)).
		Msg("Sticker accepted")

	h.respondJSON(w, http.StatusAccepted, response)
}

func (h *StickerHandler) GetSticker(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Sticker ID is required", nil)
		return
	}

	s, err := h.usecase.GetSticker(ctx, id)
	if err != nil {
		h.handleLookupError(w, err, id)
		return
	}

	response := dto.StickerResponse{
		ID:         s.ID,
		Filename:   s.OriginalFilename,
		Status:     string(s.Status),
		ContentURI: s.ContentURI.String(),
		Width:      s.Width,
		Height:     s.Height,
		Reused:     s.Reused,
		Error:      s.Error,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *StickerHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Sticker ID is required", nil)
		return
	}

	status, err := h.usecase.GetStatus(ctx, id)
	if err != nil {
		h.handleLookupError(w, err, id)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.StatusResponse{
		ID:     id,
		Status: string(status),
	})
}

func (h *StickerHandler) conversionOptions(req dto.UploadRequest) (domain.ConversionOptions, error) {
	opts := domain.ConversionOptions{
		MaxWidth:  req.MaxWidth,
		MaxHeight: req.MaxHeight,
	}

	if req.AnimationFormat == "gif" {
		opts.AnimationFormat.Format = domain.FormatGif
		if req.TransparentColor != "" {
			raw, err := hex.DecodeString(req.TransparentColor)
			if err != nil || len(raw) != 4 {
				return opts, fmt.Errorf("transparent_color must be rrggbbaa hex")
			}
			opts.AnimationFormat.Transparent = domain.RGBA{R: raw[0], G: raw[1], B: raw[2], A: raw[3]}
		}
	}
	opts.AnimationFormat = opts.AnimationFormat.Normalize()

	return opts, nil
}

func (h *StickerHandler) validateFile(handler *multipart.FileHeader) error {
	if handler.Size > domain.DefaultMaxUploadSize {
		return fmt.Errorf("file is too large (max %d MB)", domain.DefaultMaxUploadSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file format, allowed: tgs, lottie, webm, webp, gif, png, jpg")
	}

	return nil
}

func (h *StickerHandler) handleUploadError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, sticker_uc.ErrInvalidFileFormat):
		h.respondError(w, http.StatusBadRequest, "Invalid file format", err)
	case errors.Is(err, sticker_uc.ErrFileTooLarge):
		h.respondError(w, http.StatusRequestEntityTooLarge, "File too large", err)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Failed to submit sticker")
		h.respondError(w, http.StatusInternalServerError, "Failed to submit sticker", err)
	}
}

func (h *StickerHandler) handleLookupError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, sticker_uc.ErrStickerNotFound) {
		h.respondError(w, http.StatusNotFound, "Sticker not found", nil)
		return
	}
	h.logger.Error().Err(err).Str("sticker_id", id).Msg("Failed to look up sticker")
	h.respondError(w, http.StatusInternalServerError, "Failed to look up sticker", err)
}

func (h *StickerHandler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *StickerHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	h.respondJSON(w, status, resp)
}
