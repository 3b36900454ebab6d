package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"estatedeal_backend/internal/controller"
	"estatedeal_backend/pkg/config"
	"estatedeal_backend/pkg/cron"
	"estatedeal_backend/pkg/database"
	"estatedeal_backend/pkg/email"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/seed"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "estatedeal",
	Short: "EstateDeal deal-workflow backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init("estatedeal", cfg.LogLevel)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitDB(cfg.Database.URL); err != nil {
			return err
		}
		return database.MigrateDatabase(database.Models()...)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the administrator account and, optionally, demo data",
	RunE:  runSeed,
}

func init() {
	serveCmd.Flags().Bool("memory", false, "Use the in-memory store instead of postgres")
	serveCmd.Flags().Bool("migrate", true, "Migrate the schema before serving")
	seedCmd.Flags().Bool("demo", false, "Also create demo seller, broker, buyer and property")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func initControllers(svc *services) {
	controller.InitAuthController(svc.accounts)
	controller.InitLeadController(svc.leads)
	controller.InitAssociationController(svc.associations)
	controller.InitOTPController(svc.otps)
	controller.InitTransactionController(svc.transactions)
	controller.InitProgressController(svc.progress)
	controller.InitVisitController(svc.visits)
	controller.InitSupportController(svc.support)
}

func startCrons(svc *services, st stores) {
	if _, err := cron.InitPayoutRetryCron(svc.transactions); err != nil {
		logger.Log.Errorf("Could not initialize payout retry cron: %v", err)
	}
	if email.GlobalEmailService == nil {
		logger.Log.Info("Email not configured, visit reminders disabled")
		return
	}
	if _, err := cron.InitVisitReminderCron(svc.visits, st.accounts, email.GlobalEmailService); err != nil {
		logger.Log.Errorf("Could not initialize visit reminder cron: %v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	inMemory, _ := cmd.Flags().GetBool("memory")
	migrate, _ := cmd.Flags().GetBool("migrate")

	st, err := openStores(cfg, inMemory)
	if err != nil {
		return err
	}
	if !inMemory && migrate {
		if err := database.MigrateDatabase(database.Models()...); err != nil {
			logger.Log.Warnf("Migration warning: %v", err)
		}
	}

	svc, err := buildServices(cfg, st)
	if err != nil {
		return err
	}
	initControllers(svc)

	if cfg.Admin.Email != "" {
		if err := seed.Admin(context.Background(), svc.accounts, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.Log.Warnf("Could not ensure administrator account: %v", err)
		}
	}
	startCrons(svc, st)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	controller.SetupRoutes(app, svc.accounts)

	logger.Log.Infof("Server is running on port %s", cfg.Server.Port)
	return app.Listen(":" + cfg.Server.Port)
}

func runSeed(cmd *cobra.Command, args []string) error {
	demo, _ := cmd.Flags().GetBool("demo")

	st, err := openStores(cfg, false)
	if err != nil {
		return err
	}
	svc, err := buildServices(cfg, st)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Admin.Email == "" {
		logger.Log.Warn("ADMIN_EMAIL not set, skipping administrator account")
	} else if err := seed.Admin(ctx, svc.accounts, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if demo {
		if _, err := seed.Demo(ctx, svc.accounts, st.seed); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
