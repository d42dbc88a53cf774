package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arxml-merger/core/config"
	"arxml-merger/core/database"
	"arxml-merger/core/loader"
	"arxml-merger/core/logger"
	"arxml-merger/core/merge"
	"arxml-merger/core/middleware/auth"
	"arxml-merger/core/middleware/rayid"
	"arxml-merger/core/storage"

	"arxml-merger/feature/mergejob"
	"arxml-merger/feature/mergejob/models"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the merge server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Optional)
		var db *gorm.DB
		if cfg.Database.Enabled() {
			if conn, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Job history disabled, database connection failed", zap.Error(err))
			} else {
				db = conn
				verifyJobSchema(db, logg)
				logg.Info("Connected to job history database")
			}
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.UploadLimitBytes(),
		})

		// 5. Initialize Storage (Optional)
		var store storage.Client
		if cfg.Storage.Enabled() {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			logg.Info("Artifact archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		// 6. Build the merge feature
		rules, err := loadRules(cfg)
		if err != nil {
			logg.Fatal("Failed to load merge rules", zap.Error(err))
		}

		feature := mergejob.NewFeature(store, cfg.Storage.Bucket, logg, db, mergejob.Options{
			Strategy:          merge.Strategy(cfg.Merge.Strategy),
			Rules:             rules,
			ReferencePatterns: cfg.Merge.Patterns(),
			SessionTTL:        time.Duration(cfg.Server.SessionTTLMinutes) * time.Minute,
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(feature)

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Request logging with Zap + RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start the session janitor
		janitorCtx, stopJanitor := context.WithCancel(context.Background())
		feature.Service().StartJanitor(janitorCtx)

		// 10. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 11. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stopJanitor()
		_ = app.Shutdown()
	},
}

// loadRules reads the configured rule file, or returns the built-in defaults
// when rule_based is the default strategy and no file is configured.
func loadRules(cfg *config.Config) ([]merge.Rule, error) {
	if cfg.Merge.RulesFile != "" {
		data, err := os.ReadFile(cfg.Merge.RulesFile)
		if err != nil {
			return nil, err
		}
		return merge.ParseRules(data)
	}
	if merge.Strategy(cfg.Merge.Strategy) == merge.StrategyRuleBased {
		return merge.DefaultRules(), nil
	}
	return nil, nil
}

// verifyJobSchema warns when the merge_jobs table is missing columns the
// model expects. History inserts would fail later; this surfaces it at boot.
func verifyJobSchema(db *gorm.DB, logg *zap.Logger) {
	missing, err := database.VerifyColumns(db, models.MergeJob{}.TableName(), models.Columns())
	if err != nil {
		logg.Warn("Could not inspect merge_jobs schema", zap.Error(err))
		return
	}
	if len(missing) > 0 {
		logg.Warn("merge_jobs table is missing columns", zap.Strings("columns", missing))
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
