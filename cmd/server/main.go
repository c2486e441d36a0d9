// @title           Casefile API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"casefile/internal/api"
	"casefile/internal/config"
	"casefile/internal/database"
	"casefile/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "casefile/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping the database: %v", err)
	}
	log.Println("Connected to the database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}
	log.Printf("Attachments will be stored in: %s", cfg.Storage.Path)

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, localStorage)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/login", server.LoginHandler)
	r.Post("/api/v1/auth/refresh", server.RefreshTokenHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/me", server.GetCurrentUserHandler)
		r.Get("/sessions", server.ListSessionsHandler)
		r.Delete("/sessions/{sessionId}", server.DeleteSessionHandler)

		r.Get("/folders/list/{slug}", server.FolderListHandler)
		r.Get("/folders/{slug}", server.GetFoldersHandler)
		r.Post("/folders/{slug}", server.CreateFolderHandler)
		r.Post("/folders/rename/{folderId}", server.RenameFolderHandler)
		r.Delete("/folders/delete/{folderId}", server.DeleteFolderHandler)
		r.Post("/folders/sort", server.SortFoldersHandler)

		r.Post("/documents/save/{slug}", server.SaveDocumentHandler)
		r.Post("/documents/{documentId}", server.UpdateDocumentHandler)
		r.Delete("/documents/{documentId}", server.DeleteDocumentHandler)
		r.Post("/documents/sort", server.SortDocumentsHandler)

		r.Post("/attachments/save", server.UploadAttachmentHandler)
		r.Get("/attachments/{attachmentId}/download", server.DownloadAttachmentHandler)
	})

	log.Println("Starting server on port :8080")
	if err := http.ListenAndServe(":8080", r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
