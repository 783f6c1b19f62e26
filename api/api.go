package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/course-catalog/utils/logger"
	"github.com/sahilchouksey/course-catalog/utils/middleware"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *logger.Logger
}

// NewAPIServer builds the fiber app with the catalog error handler and the
// security middleware stack installed.
func NewAPIServer(listenAddress string, security middleware.SecurityConfig, log *logger.Logger) *APIServer {
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      "course-catalog",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    4 * 1024 * 1024,
	})
	middleware.SetupSecurity(app, security)

	return &APIServer{
		app:           app,
		listenAddress: listenAddress,
		log:           log,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("starting API server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}
