package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/verid-labs/verid/internal/api/docs"
	"github.com/verid-labs/verid/internal/api/handler"
	"github.com/verid-labs/verid/internal/api/middleware"
	"github.com/verid-labs/verid/internal/challenge"
	"github.com/verid-labs/verid/internal/config"
	"github.com/verid-labs/verid/internal/document"
	"github.com/verid-labs/verid/internal/provider"
	"github.com/verid-labs/verid/internal/repository"
	"github.com/verid-labs/verid/internal/service"
)

type Dependencies struct {
	Config           *config.Config
	VerificationRepo *repository.VerificationRepository
	IdentityRepo     *repository.IdentityRepository
	FaceProvider     provider.FaceAnalyzer
	DocumentReader   provider.DocumentReader
	DB               *pgxpool.Pool
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Verid API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var pool *pgxpool.Pool
	if r.deps != nil {
		pool = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pool)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		cfg := r.deps.Config
		v1.Use(middleware.Auth(cfg.APIKeyHash))

		// Liveness service over an in-memory session store
		store := challenge.NewStore(cfg.SessionTTL)
		livenessService := service.NewLivenessService(store, r.deps.FaceProvider, r.deps.VerificationRepo).
			WithSmileThreshold(cfg.SmileThreshold).
			WithSpoofThreshold(cfg.SpoofThreshold)

		challengeHandler := handler.NewChallengeHandler(livenessService, r.logger)

		// Challenge session routes
		v1.Post("/challenges", challengeHandler.CreateSession)
		v1.Get("/challenges/:session_id", challengeHandler.GetSession)
		v1.Post("/challenges/:session_id/complete", challengeHandler.Complete)
		v1.Post("/challenges/:session_id/frames/blink", challengeHandler.BlinkFrame)
		v1.Post("/challenges/:session_id/frames/pose", challengeHandler.PoseFrame)
		v1.Post("/challenges/validate-batch", challengeHandler.ValidateBatch)

		// Stateless liveness routes
		v1.Post("/liveness/smile", challengeHandler.ValidateSmile)
		v1.Post("/liveness/spoof", challengeHandler.CheckSpoof)
		v1.Post("/liveness/quality", challengeHandler.CheckQuality)
		v1.Post("/liveness/passive", challengeHandler.PassiveLiveness)

		// Document pipeline and identity registry
		pipeline := document.NewPipeline(r.deps.DocumentReader, r.logger)
		documentService := service.NewDocumentService(pipeline, r.deps.IdentityRepo)

		documentHandler := handler.NewDocumentHandler(documentService, r.logger)

		v1.Post("/documents/process", documentHandler.Process)
		v1.Post("/identities", documentHandler.Register)
		v1.Post("/identities/:id/claims", documentHandler.VerifyClaim)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
