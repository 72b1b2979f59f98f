package main

import (
	"log"

	"github.com/creatorstation/reel-harvester/internal/appcron"
	"github.com/creatorstation/reel-harvester/internal/archiver"
	"github.com/creatorstation/reel-harvester/internal/bunny"
	"github.com/creatorstation/reel-harvester/internal/config"
	"github.com/creatorstation/reel-harvester/internal/creators"
	"github.com/creatorstation/reel-harvester/internal/db"
	"github.com/creatorstation/reel-harvester/internal/platform"
	"github.com/creatorstation/reel-harvester/internal/store"
	"github.com/creatorstation/reel-harvester/internal/transcription"
	"github.com/creatorstation/reel-harvester/internal/videos"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	creatorStore := store.New(db.GetMongoDB())
	platformClient := platform.NewClient(cfg.Scraper)
	cdn := bunny.NewClient(cfg.Bunny)
	arch := archiver.New(cdn, platformClient)

	whisper := transcription.NewWhisperClient(cfg.Whisper)
	analyzer := transcription.NewAnalyzer(cfg.Analyzer)
	coordinator := transcription.NewCoordinator(creatorStore, whisper, analyzer, cfg.Transcription.Timeout)

	followSvc := creators.NewService(platformClient, platformClient, arch, creatorStore, coordinator)
	videoSvc := videos.NewService(platformClient, cdn, creatorStore, coordinator)
	refresher := appcron.NewRefresher(creatorStore, platformClient, arch, coordinator)

	appcron.SetupRefreshCron(refresher)

	app := fiber.New()

	creators.MountController(app.Group("/creators"), followSvc)
	videos.MountController(app.Group("/internal/video"), videoSvc, cfg.Internal.APISecret)
	appcron.MountController(app.Group("/cron"), refresher)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
