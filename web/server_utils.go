package web

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// OpenLogFile opens the access-log file the fiber logger middleware appends
// to, creating it when missing.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Listen serves the app on the configured web port and blocks until the app
// shuts down.
func (ws *WebServer) Listen(app *fiber.App) error {
	addr := fmt.Sprintf(":%s", ws.config.WebPort)
	log.Info().Str("addr", addr).Msg("Starting web server")
	return app.Listen(addr)
}
