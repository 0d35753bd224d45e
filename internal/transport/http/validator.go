package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chessrules/internal/core"
)

var validate = validator.New()

// validationMiddleware parses and validates JSON bodies for the POST routes
// and stores the result under the "validatedBody" local.
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games"):
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/moves"):
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo"):
		requestType = &core.UndoRequest{}
	case strings.HasSuffix(path, "/select"):
		requestType = &core.SelectRequest{}
	case strings.HasSuffix(path, "/select/move"):
		requestType = &core.SelectedMoveRequest{}
	case strings.HasSuffix(path, "/reset"):
		requestType = &core.ResetRequest{}
	default:
		return c.Next()
	}

	// An empty body validates as the zero request.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrCodeInvalidRequest,
				Details: err.Error(),
			})
		}
	}

	if errs := validate.Struct(requestType); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrCodeInvalidRequest,
			Details: describeValidation(errs),
		})
	}

	c.Locals("validatedBody", requestType)
	return c.Next()
}

func describeValidation(errs error) string {
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		return errs.Error()
	}
	var details strings.Builder
	for _, err := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", err.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", err.Field(), err.Param())
		case "min", "max":
			bound := "at least"
			if err.Tag() == "max" {
				bound = "at most"
			}
			if err.Type().Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be %s %s characters", err.Field(), bound, err.Param())
			} else {
				fmt.Fprintf(&details, "%s must be %s %s", err.Field(), bound, err.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", err.Field(), err.Tag())
		}
	}
	return details.String()
}

// validatedBody fetches the request parsed by validationMiddleware.
func validatedBody[T any](c *fiber.Ctx) (*T, error) {
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return body, nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
