package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/services"
	"github.com/jakechorley/timetabler/pkg/db"
)

// envelope is the body of every JSON response
type envelope struct {
	Code    int         `json:"code"`
	Status  string      `json:"status"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func success(c *fiber.Ctx, message string, data interface{}) error {
	return successWithCode(c, fiber.StatusOK, message, data)
}

func successWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(envelope{Code: code, Status: "success", Message: message, Data: data})
}

// statusFor maps a domain error onto an HTTP status and the details worth returning
func statusFor(err error) (int, interface{}) {
	var (
		fiberErr   *fiber.Error
		noEligible *model.NoEligibleAssignmentsError
		rejected   *services.EntryRejectedError
		invalid    *model.ValidationError
		cancelled  *model.CancelledError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, nil
	case errors.As(err, &noEligible):
		return fiber.StatusUnprocessableEntity, nil
	case errors.As(err, &rejected):
		return fiber.StatusConflict, rejected.Conflicts
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest, invalid.Problems
	case errors.Is(err, db.ErrNotFound):
		return fiber.StatusNotFound, nil
	case errors.As(err, &cancelled):
		return fiber.StatusServiceUnavailable, nil
	}
	return fiber.StatusInternalServerError, nil
}

func reasonOf(err error) string {
	var rejected *services.EntryRejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason()
	}
	if reason := model.ReasonOf(err); reason != "Error" {
		return reason
	}
	return ""
}
