package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/totosugito/sicerdas-sub001/config"
	"github.com/totosugito/sicerdas-sub001/database"
	adminctrl "github.com/totosugito/sicerdas-sub001/internal/controller/admin"
	userctrl "github.com/totosugito/sicerdas-sub001/internal/controller/user"
	"github.com/totosugito/sicerdas-sub001/internal/logger"
	"github.com/totosugito/sicerdas-sub001/internal/model"
	"github.com/totosugito/sicerdas-sub001/internal/repository"
	"github.com/totosugito/sicerdas-sub001/internal/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Exam Session & Stats API
// @version 1.0
// @description API for timed exam sessions with automatic grading and rolling per-user statistics.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewPackageRepository,
			repository.NewQuestionRepository,
			repository.NewSessionRepository,
			repository.NewSessionAnswerRepository,
			repository.NewStatsRepository,
		),

		fx.Provide(
			service.NewSessionService,
			// SubmissionService and ReconcileService own transactions, so the
			// *gorm.DB is handed in as the Transactor.
			func(
				sessionRepo repository.SessionRepository,
				answerRepo repository.SessionAnswerRepository,
				questionRepo repository.QuestionRepository,
				statsRepo repository.StatsRepository,
				db *gorm.DB,
			) service.SubmissionService {
				return service.NewSubmissionService(sessionRepo, answerRepo, questionRepo, statsRepo, db)
			},
			service.NewStatsService,
			service.NewAdminPackageService,
			func(
				sessionRepo repository.SessionRepository,
				answerRepo repository.SessionAnswerRepository,
				questionRepo repository.QuestionRepository,
				statsRepo repository.StatsRepository,
				db *gorm.DB,
			) service.ReconcileService {
				return service.NewReconcileService(sessionRepo, answerRepo, questionRepo, statsRepo, db)
			},
		),

		fx.Provide(
			userctrl.NewSessionController,
			userctrl.NewStatsController,
			adminctrl.NewPackageController,
			adminctrl.NewReconcileController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterReconciliationScheduler),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionCtrl *userctrl.SessionController,
	statsCtrl *userctrl.StatsController,
	packageCtrl *adminctrl.PackageController,
	reconcileCtrl *adminctrl.ReconcileController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/packages", packageCtrl.CreatePackage)
		adminAPIGroup.POST("/reconcile", reconcileCtrl.TriggerReconciliation)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		sessionsGroup := userAPIGroup.Group("/sessions")
		sessionsGroup.POST("/start", sessionCtrl.StartSession)
		sessionsGroup.POST("/save-answer", sessionCtrl.SaveAnswer)
		sessionsGroup.GET("/:session_id", sessionCtrl.GetSessionDetails)
		sessionsGroup.POST("/:session_id/submit", sessionCtrl.SubmitSession)
		sessionsGroup.POST("/:session_id/abandon", sessionCtrl.AbandonSession)

		statsGroup := userAPIGroup.Group("/stats")
		statsGroup.GET("/global", statsCtrl.GetGlobalStats)
		statsGroup.GET("/subjects", statsCtrl.GetSubjectStats)
		statsGroup.GET("/tags", statsCtrl.GetTagStats)

		userAPIGroup.GET("/leaderboard", statsCtrl.GetLeaderboard)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Subject{},
		&model.Tag{},
		&model.Question{},
		&model.QuestionOption{},
		&model.QuestionTag{},
		&model.Package{},
		&model.PackageQuestion{},
		&model.Session{},
		&model.SessionAnswer{},
		&model.UserStatsGlobal{},
		&model.UserStatsSubject{},
		&model.UserStatsTag{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

// RegisterReconciliationScheduler runs the stats rebuild on a cron schedule.
// SkipIfStillRunning keeps a slow rebuild from overlapping the next tick.
func RegisterReconciliationScheduler(
	lc fx.Lifecycle,
	cfg *config.Config,
	reconcileService service.ReconcileService,
) error {
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := scheduler.AddFunc(cfg.Reconcile.Cron, func() {
		if _, err := reconcileService.Run(context.Background()); err != nil {
			log.Error().Err(err).Msg("Scheduled stats reconciliation failed")
		}
	})
	if err != nil {
		log.Error().Err(err).Str("cron", cfg.Reconcile.Cron).Msg("Invalid reconciliation schedule")
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Str("cron", cfg.Reconcile.Cron).Msg("Reconciliation scheduler starting")
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
