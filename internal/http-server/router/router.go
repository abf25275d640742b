package router

import (
	"net/http"

	"sticker-processor/internal/http-server/handler/sticker"
	"sticker-processor/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	StickerHandler *sticker.StickerHandler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/stickers", func(r chi.Router) {
			r.Post("/upload", h.StickerHandler.UploadSticker)
			r.Get("/{id}", h.StickerHandler.GetSticker)
			r.Get("/{id}/status", h.StickerHandler.GetStatus)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
