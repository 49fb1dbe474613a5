package router

import (
	"net/http"
	"strings"

	"storefront-media/internal/domain"
	"storefront-media/internal/http-server/handler/upload"
	"storefront-media/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Slack on top of the file limit for multipart boundaries and other fields.
const multipartOverhead = 1 << 20

type Handler struct {
	UploadHandler  *upload.UploadHandler
	AllowedOrigins []string
	// PublicPrefix is where stored artifacts are served from, e.g. /uploads.
	PublicPrefix string
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RecoveryMiddleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, h.publicPrefix()+"/") {
				middleware.LoggingMiddleware(next).ServeHTTP(w, r)
			} else {
				next.ServeHTTP(w, r)
			}
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get(h.publicPrefix()+"/{filename}", h.UploadHandler.ServeImage)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.LimitBody(domain.MaxUploadSize+multipartOverhead)).
			Post("/admin/upload/image", h.UploadHandler.UploadImage)
		r.Delete("/admin/upload/image/{filename}", h.UploadHandler.DeleteImage)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}

func (h *Handler) publicPrefix() string {
	return "/" + strings.Trim(h.PublicPrefix, "/")
}
