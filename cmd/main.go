package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"github.com/wrferreira1003/Bug-Finder/config"
	"github.com/wrferreira1003/Bug-Finder/database"
	_ "github.com/wrferreira1003/Bug-Finder/docs" // generated by swag
	"github.com/wrferreira1003/Bug-Finder/internal/controller"
	"github.com/wrferreira1003/Bug-Finder/internal/discord"
	"github.com/wrferreira1003/Bug-Finder/internal/elasticsearch"
	"github.com/wrferreira1003/Bug-Finder/internal/filestate"
	"github.com/wrferreira1003/Bug-Finder/internal/github"
	"github.com/wrferreira1003/Bug-Finder/internal/kafka"
	"github.com/wrferreira1003/Bug-Finder/internal/llm"
	"github.com/wrferreira1003/Bug-Finder/internal/mysql"
	"github.com/wrferreira1003/Bug-Finder/internal/parser"
	"github.com/wrferreira1003/Bug-Finder/internal/scheduler"
	"github.com/wrferreira1003/Bug-Finder/internal/service"
	"github.com/wrferreira1003/Bug-Finder/internal/timescaledb"
)

// @title           Bug Finder API
// @version         1.0
// @description     Automated bug detection pipeline: ingests application logs, classifies bug signals, deduplicates against filed issues, drafts and reviews GitHub issues and notifies Discord on publication.

// @contact.name   Wellington Ferreira
// @contact.url    https://github.com/wrferreira1003/Bug-Finder

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         logs
// @tag.description  Log submission, dry-run analysis and archive search

// @tag.name         issues
// @tag.description  Issues filed by the pipeline

// @tag.name         status
// @tag.description  Pipeline status and metric summaries

func main() {
	var wg sync.WaitGroup

	app := fx.New(
		fx.Provide(
			NewConfig,
		),
		fx.Provide(
			database.NewDB,
			NewGinEngine,
			mysql.NewIssueRepository,
			elasticsearch.NewElasticsearchLogRepository,
			timescaledb.NewTimescaleMetricRepository,
			llm.NewGeminiService,
			github.NewPublisher,
			discord.NewWebhookNotifier,
			service.NewPipelineService,
			service.NewLogQueryService,
			service.NewIssueQueryService,
			service.NewMetricQueryService,
			controller.NewLogController,
			controller.NewIssueController,
			controller.NewStatusController,
			NewFileStateManager,
			parser.NewStructuredLogParser,
			kafka.NewKafkaLogProducer,
			kafka.NewKafkaLogConsumer,
			elasticsearch.NewElasticLogStore,
			timescaledb.ProvideTimescaleDBPool,
			service.NewLogProducerService,
			service.NewLogConsumerService,
		),
		fx.Invoke(RegisterAPIRoutes,
			RegisterScheduler,
			func(lc fx.Lifecycle, consumerService service.LogConsumerService) {
				startLogConsumer(lc, &wg, consumerService)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logController *controller.LogController,
	issueController *controller.IssueController,
	statusController *controller.StatusController,
) {
	if logController != nil {
		controller.RegisterLogRoutes(router, logController)
	} else {
		log.Warn().Msg("LogController not provided, skipping log API routes.")
	}

	if issueController != nil {
		controller.RegisterIssueRoutes(router, issueController)
	} else {
		log.Warn().Msg("IssueController not provided")
	}
	if statusController != nil {
		controller.RegisterStatusRoutes(router, statusController)
	} else {
		log.Warn().Msg("StatusController not provided")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

func NewFileStateManager(cfg *config.Config) filestate.Manager {
	return filestate.NewManager(cfg.FileState.FilePath)
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, logProducerSvc service.LogProducerService) {
	scheduler.NewScheduler(lc, cfg, logProducerSvc)
}

// startLogConsumer starts the LogConsumerService in a goroutine managed
// by the fx lifecycle.
func startLogConsumer(lc fx.Lifecycle, wg *sync.WaitGroup, consumerService service.LogConsumerService) {
	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting Log Consumer goroutine")
			go consumerService.Run(ctx, wg)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info().Msg("Signaling Log Consumer goroutine to stop...")
			cancel()
			return nil
		},
	})
}
