package routes

import (
	"net/http"

	"github.com/nimbusvault/nimbusvault/internal/app"
	"github.com/nimbusvault/nimbusvault/internal/handler"
	"github.com/nimbusvault/nimbusvault/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.Cfg.AppName)
	auth := handler.NewAuthHandler(app.AuthService)
	file := handler.NewFileHandler(app.FileService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /{$}", health.Home)

	// Auth (register/login rate limited per IP)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /auth/protected", middleware.RequireAuth(auth.Protected))

	// Files (tenant scope comes from the verified identity only)
	mux.HandleFunc("POST /file/upload_url", middleware.RequireAuth(file.UploadURL))
	mux.HandleFunc("GET /file/list", middleware.RequireAuth(file.List))
	mux.HandleFunc("POST /file/download_url", middleware.RequireAuth(file.DownloadURL))
	mux.HandleFunc("POST /file/delete", middleware.RequireAuth(file.Delete))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Auth(app.AuthService),
	)

	return handler
}
