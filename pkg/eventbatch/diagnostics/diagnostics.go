// Package diagnostics exposes a read-only local HTTP surface over the
// running engine: GET /healthz and GET /status.
// Grounded on the fiber route wiring in components/audit and
// components/ledger, minus the auth/swagger/CORS middleware those
// public-facing APIs need and this local, operator-only surface does
// not.
package diagnostics

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rudderlabs/rudder-go-batch-engine/internal/platform/mlog"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/backoff"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/retryheaders"
	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/uploader"
)

// Server is the diagnostics HTTP app plus the engine handles it reports
// on.
type Server struct {
	app *fiber.App
}

// NewServer builds the diagnostics app. It does not listen until Listen
// is called.
func NewServer(u *uploader.Uploader, b *backoff.Policy, retry *retryheaders.Provider, logger mlog.Logger) *Server {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("healthy")
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"state":            u.State().String(),
			"pendingSignals":   u.PendingSignals(),
			"backoffExhausted": b.Exhausted(),
			"requestDate":      time.Now().UTC(),
		}

		if rec, ok := retry.Peek(); ok {
			body["lastRetryReason"] = rec.Reason
			body["lastRetryAttempt"] = rec.Attempt
		}

		return c.JSON(body)
	})

	return &Server{app: app}
}

// Listen starts serving on addr. Blocks until the server stops or
// errors.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
