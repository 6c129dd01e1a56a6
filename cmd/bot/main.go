package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	config "github.com/MetaQop/tag-referalochka/configs"
	"github.com/MetaQop/tag-referalochka/database"
	"github.com/MetaQop/tag-referalochka/jobs"
	"github.com/MetaQop/tag-referalochka/routes"
	"github.com/MetaQop/tag-referalochka/services"
	"github.com/MetaQop/tag-referalochka/store"
	"github.com/MetaQop/tag-referalochka/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	log.Println("✅ Database connected and migrated")

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("🔥 Failed to authorize bot: %v", err)
	}
	log.Printf("✅ Authorized as @%s", api.Self.UserName)

	ledger := store.NewLedger(db)
	transport := telegram.NewClient(api)

	registry := services.NewRegistry(ledger, transport, cfg.ChannelID)
	accounting := services.NewAccounting(ledger)
	lifecycle := services.NewLifecycle(ledger, cfg.GrantPeriod, cfg.WarningWindow)
	processor := services.NewProcessor(registry, accounting, lifecycle, cfg.ChannelID, cfg.RequiredInvites)
	dispatcher := services.NewDispatcher(transport, cfg.GroupID, cfg.RequiredInvites)

	sweeper := jobs.NewExpirySweeper(ledger, lifecycle, dispatcher)
	c := cron.New()
	if _, err := c.AddJob(cfg.SweepSchedule, sweeper); err != nil {
		log.Fatalf("🔥 Invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	c.Start()
	log.Printf("✅ Expiry sweep scheduled: %s", cfg.SweepSchedule)

	app := fiber.New(fiber.Config{
		AppName:      "tag-referalochka",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(cors.New())
	app.Use(recover.New())
	app.Use(logger.New())
	routes.StatusRoutes(app, ledger)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("🔥 HTTP server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := telegram.NewBot(api, ledger, registry, processor, dispatcher, cfg.RequiredInvites)
	bot.Run(ctx)

	c.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("🔥 HTTP shutdown: %v", err)
	}
	log.Println("Bot stopped.")
}
