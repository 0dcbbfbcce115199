package web

import (
	"os"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/pkg/metrics"
	"github.com/quegate/quegate/web/docs"
	"github.com/quegate/quegate/web/handlers/api"

	"github.com/gofiber/swagger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// WebServer exposes the gateway over HTTP. Handlers never touch a backend
// directly; everything goes through the gateway service.
type WebServer struct {
	config    *config.Config
	Gateway   gateway.GatewayService
	collector metrics.MetricsCollector
}

func NewWebServer(cfg *config.Config, svc gateway.GatewayService, collector metrics.MetricsCollector) (*WebServer, error) {
	return &WebServer{
		config:    cfg,
		Gateway:   svc,
		collector: collector,
	}, nil
}

func (ws *WebServer) SetupApp(logFile *os.File) *fiber.App {
	app := ws.configServer(logFile)

	if ws.config.EnableSwagger {
		docs.SwaggerInfo.Host = "localhost:" + ws.config.WebPort
		log.Info().Str("path", ws.config.SwaggerPrefix+"/index.html").Msg("Swagger docs enabled")
		app.Get(ws.config.SwaggerPrefix+"/*", swagger.HandlerDefault)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	if ws.collector != nil && ws.collector.IsEnabled() {
		app.Get("/metrics", adaptor.HTTPHandler(ws.collector.Handler()))
	}

	ws.AddApi(app)

	return app
}

func (ws *WebServer) AddApi(app *fiber.App) {
	apiGrp := app.Group(ws.config.APIPrefix)

	// Connection routes

	apiGrp.Get("/status", func(c *fiber.Ctx) error {
		return api.GetStatus(c, ws.Gateway)
	})
	apiGrp.Post("/connect", func(c *fiber.Ctx) error {
		return api.Connect(c, ws.Gateway)
	})
	apiGrp.Post("/disconnect", func(c *fiber.Ctx) error {
		return api.Disconnect(c, ws.Gateway)
	})

	// Queue routes

	apiGrp.Get("/queues", func(c *fiber.Ctx) error {
		return api.ListQueues(c, ws.Gateway)
	})
	apiGrp.Post("/queues", func(c *fiber.Ctx) error {
		return api.CreateQueue(c, ws.Gateway)
	})
	apiGrp.Get("/queues/:name", func(c *fiber.Ctx) error {
		return api.GetQueue(c, ws.Gateway)
	})
	apiGrp.Put("/queues/:name", func(c *fiber.Ctx) error {
		return api.UpdateQueue(c, ws.Gateway)
	})
	apiGrp.Delete("/queues/:name", func(c *fiber.Ctx) error {
		return api.DeleteQueue(c, ws.Gateway)
	})
	apiGrp.Get("/queues/:name/exists", func(c *fiber.Ctx) error {
		return api.QueueExists(c, ws.Gateway)
	})
	apiGrp.Get("/queues/:name/count", func(c *fiber.Ctx) error {
		return api.GetQueueCount(c, ws.Gateway)
	})
	apiGrp.Get("/queues/:name/stats", func(c *fiber.Ctx) error {
		return api.GetQueueStats(c, ws.Gateway)
	})
	apiGrp.Delete("/queues/:name/messages", func(c *fiber.Ctx) error {
		return api.PurgeQueue(c, ws.Gateway)
	})

	// Message routes

	apiGrp.Post("/queues/:name/messages", func(c *fiber.Ctx) error {
		return api.SendMessage(c, ws.Gateway)
	})
	apiGrp.Post("/queues/:name/receive", func(c *fiber.Ctx) error {
		return api.ReceiveMessage(c, ws.Gateway)
	})
	apiGrp.Get("/queues/:name/peek", func(c *fiber.Ctx) error {
		return api.PeekMessage(c, ws.Gateway)
	})

	// Overview route

	apiGrp.Get("/overview", func(c *fiber.Ctx) error {
		return api.GetOverview(c, ws.Gateway)
	})

	// Alert routes

	apiGrp.Get("/alerts", func(c *fiber.Ctx) error {
		return api.ListAlerts(c, ws.Gateway)
	})
	apiGrp.Post("/alerts/:id/ack", func(c *fiber.Ctx) error {
		return api.AckAlert(c, ws.Gateway)
	})

	// Journal route

	apiGrp.Get("/journal", func(c *fiber.Ctx) error {
		return api.GetJournal(c, ws.Gateway)
	})

	// Mailing list routes

	apiGrp.Get("/mailing-lists", func(c *fiber.Ctx) error {
		return api.ListMailingLists(c, ws.Gateway)
	})
	apiGrp.Post("/mailing-lists", func(c *fiber.Ctx) error {
		return api.CreateMailingList(c, ws.Gateway)
	})
}

func (ws *WebServer) configServer(logFile *os.File) *fiber.App {

	config := fiber.Config{
		Prefork:               false,
		AppName:               "quegate-api",
		DisableStartupMessage: true,
	}
	app := fiber.New(config)

	app.Use(recover.New())
	app.Use(cors.New())

	app.Use(logger.New(logger.Config{
		Output: logFile,
	}))
	return app
}
