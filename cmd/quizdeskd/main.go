package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	auth "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh)
	active := api.NewActiveSession()

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local login (off by default; a single-user offline install can run open)
	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc))
	}

	r.Group(func(pr chi.Router) {
		if cfg.EnableLocalAuth {
			pr.Use(auth.JWTMiddleware(authSvc))
		}

		pr.Route("/docs", func(dr chi.Router) {
			dr.Post("/", api.ImportDocHandler(st))
			dr.Get("/", api.ListDocsHandler(st))
			dr.Get("/{docID}", api.GetDocHandler(st))
			dr.Put("/{docID}", api.UpdateDocHandler(st))
			dr.Delete("/{docID}", api.DeleteDocHandler(st))
			dr.Get("/{docID}/export", api.ExportDocHandler(st))
		})

		pr.Route("/sessions", func(sr chi.Router) {
			sr.Post("/", api.StartSessionHandler(st, active))
			sr.Get("/current", api.CurrentSessionHandler(active))
			sr.Post("/current/answer", api.AnswerHandler(active))
			sr.Post("/current/next", api.NextHandler(active))
			sr.Post("/current/prev", api.PrevHandler(active))
			sr.Post("/current/toggle-explanation", api.ToggleExplanationHandler(active))
			sr.Get("/current/score", api.ScoreHandler(active))
			sr.Post("/current/finish", api.FinishSessionHandler(st, active))
		})

		pr.Get("/results", api.ListResultsHandler(st))
		pr.Delete("/results", api.ClearResultsHandler(st))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
