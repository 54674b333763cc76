package api

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/services"
)

// Server exposes the engine over HTTP
type Server struct {
	engine   *services.Engine
	logger   *zap.Logger
	validate *validator.Validate
}

// New builds the fiber app with every route mounted under /api
func New(engine *services.Engine, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: engine, logger: logger, validate: validator.New()}
	s.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(s.requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	r := app.Group("/api")

	generator := r.Group("/generador")
	generator.Post("/generar", s.generate)
	generator.Get("/vista-previa", s.preview)
	generator.Get("/estadisticas", s.statistics)
	generator.Delete("/limpiar", s.clear)
	generator.Get("/exportar", s.export)

	schedules := r.Group("/horarios")
	schedules.Get("/", s.listEntries)
	schedules.Post("/validar", s.validateEntry)
	schedules.Post("/", s.insertEntry)
	schedules.Put("/:id", s.replaceEntry)
	schedules.Delete("/:id", s.deleteEntry)

	r.Get("/docentes/:id/horario", s.teacherSchedule)
	r.Get("/grupos/:id/horario", s.groupSchedule)
	r.Post("/aulas/:id/verificar-disponibilidad", s.roomAvailability)

	return app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-ID", id)

	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the status before it is logged
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}

	s.logger.Debug("Handled request",
		zap.String("request_id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.OriginalURL()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, details := statusFor(err)
	if code == fiber.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.OriginalURL()), zap.Error(err))
	}
	return c.Status(code).JSON(envelope{
		Code:    code,
		Status:  "error",
		Reason:  reasonOf(err),
		Message: err.Error(),
		Errors:  details,
	})
}
