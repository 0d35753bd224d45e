package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chessrules/internal/core"
	"chessrules/internal/service"
)

const rateLimitRate = 10 // req/sec

type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  10 * time.Second,
		// Long-poll requests hold the connection for up to service.WaitTimeout.
		WriteTimeout:          service.WaitTimeout + 5*time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	// Rate limiter: 10/20 req/sec per IP
	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			// First hop of X-Forwarded-For, then the peer address
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrCodeRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/games", h.CreateGame)
	api.Get("/games/:gameId", h.GetGame)
	api.Delete("/games/:gameId", h.DeleteGame)
	api.Get("/games/:gameId/moves", h.LegalMoves)
	api.Post("/games/:gameId/moves", h.MakeMove)
	api.Post("/games/:gameId/undo", h.UndoMove)
	api.Post("/games/:gameId/redo", h.RedoMove)
	api.Get("/games/:gameId/board", h.GetBoard)
	api.Get("/games/:gameId/hint", h.Hint)
	api.Post("/games/:gameId/select", h.SelectPiece)
	api.Delete("/games/:gameId/select", h.ClearSelection)
	api.Post("/games/:gameId/select/move", h.MoveSelected)
	api.Post("/games/:gameId/reset", h.ResetGame)

	return app
}

// contentTypeValidator ensures POST requests with a body are application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrCodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrCodeInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrCodeGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrCodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrCodeRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// errorStatus maps a service error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrGameNotFound):
		return fiber.StatusNotFound, core.ErrCodeGameNotFound
	case errors.Is(err, core.ErrMalformedFEN):
		return fiber.StatusBadRequest, core.ErrCodeInvalidFEN
	case errors.Is(err, core.ErrIllegalMove):
		return fiber.StatusBadRequest, core.ErrCodeInvalidMove
	case errors.Is(err, core.ErrEmptyUndoStack):
		return fiber.StatusBadRequest, core.ErrCodeNothingToUndo
	case errors.Is(err, core.ErrEmptyRedoStack):
		return fiber.StatusBadRequest, core.ErrCodeNothingToRedo
	case errors.Is(err, core.ErrGameOver):
		return fiber.StatusBadRequest, core.ErrCodeGameOver
	case errors.Is(err, core.ErrNotHumanTurn):
		return fiber.StatusBadRequest, core.ErrCodeNotHumanTurn
	case errors.Is(err, core.ErrNotComputerTurn):
		return fiber.StatusBadRequest, core.ErrCodeNotComputerTurn
	case errors.Is(err, core.ErrPositionChanged):
		return fiber.StatusConflict, core.ErrCodeConflict
	case errors.Is(err, core.ErrEngineUnavailable):
		return fiber.StatusServiceUnavailable, core.ErrCodeEngineUnavailable
	default:
		return fiber.StatusInternalServerError, core.ErrCodeInternalError
	}
}

func sendError(c *fiber.Ctx, summary string, err error) error {
	status, code := errorStatus(err)
	return c.Status(status).JSON(core.ErrorResponse{
		Error:   summary,
		Code:    code,
		Details: err.Error(),
	})
}

// Health reports liveness plus the state of the optional backends.
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	engine := "disabled"
	if h.svc.EngineAvailable() {
		engine = "ok"
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"cache":   h.svc.GetCacheHealth(c.Context()),
		"engine":  engine,
	})
}
