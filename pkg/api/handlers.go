package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/reporting"
	"github.com/jakechorley/timetabler/pkg/core/services"
	"github.com/jakechorley/timetabler/pkg/export"
)

const cycleParam = "ciclo_escolar"

type cycleRequest struct {
	Cycle  string `json:"ciclo_escolar"`
	DryRun bool   `json:"dry_run"`
}

type entryRequest struct {
	ID           string `json:"id"`
	Cycle        string `json:"ciclo_escolar"`
	Day          string `json:"day" validate:"required"`
	Start        string `json:"start" validate:"required"`
	End          string `json:"end" validate:"required"`
	TeacherID    string `json:"teacherId" validate:"required"`
	SubjectID    string `json:"subjectId" validate:"required"`
	GroupID      string `json:"groupId" validate:"required"`
	RoomID       string `json:"roomId" validate:"required"`
	AssignmentID string `json:"assignmentId"`
}

type roomAvailabilityRequest struct {
	Cycle string `json:"ciclo_escolar"`
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// cycleOf prefers the body field and falls back to the query string
func cycleOf(c *fiber.Ctx, fromBody string) string {
	if cycle := strings.TrimSpace(fromBody); cycle != "" {
		return cycle
	}
	return strings.TrimSpace(c.Query(cycleParam))
}

// parseBody decodes an optional JSON body; requests without one keep the zero value
func (s *Server) parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// check runs struct validation, turning failures into a ValidationError
func (s *Server) check(entity string, req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &model.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Problems = append(verr.Problems, model.FieldProblem{Entity: entity, Field: fe.Field(), Message: "failed on the " + fe.Tag() + " rule"})
	}
	return verr
}

func (r entryRequest) entry() (model.ScheduleEntry, error) {
	day, err := model.ParseWeekday(r.Day)
	if err != nil {
		return model.ScheduleEntry{}, model.NewValidationError("entry", r.ID, "day", err.Error())
	}
	return model.ScheduleEntry{
		ID:           r.ID,
		Day:          day,
		Start:        r.Start,
		End:          r.End,
		TeacherID:    r.TeacherID,
		SubjectID:    r.SubjectID,
		GroupID:      r.GroupID,
		RoomID:       r.RoomID,
		AssignmentID: r.AssignmentID,
	}, nil
}

func (s *Server) generate(c *fiber.Ctx) error {
	var req cycleRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	result, err := s.engine.Generate(c.UserContext(), cycleOf(c, req.Cycle), services.GenerateOptions{DryRun: req.DryRun})
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Placed %d hours", result.PlacedCount)
	if len(result.Unplaceable) > 0 {
		message = fmt.Sprintf("Placed %d hours, %d could not be placed", result.PlacedCount, len(result.Unplaceable))
	}
	return success(c, message, result)
}

func (s *Server) preview(c *fiber.Ctx) error {
	result, err := s.engine.Preview(c.UserContext(), cycleOf(c, ""))
	if err != nil {
		return err
	}
	return success(c, "Preview computed", result)
}

func (s *Server) statistics(c *fiber.Ctx) error {
	stats, err := s.engine.Statistics(c.UserContext(), cycleOf(c, ""))
	if err != nil {
		return err
	}
	return success(c, "Statistics computed", stats)
}

func (s *Server) clear(c *fiber.Ctx) error {
	var req cycleRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}

	result, err := s.engine.Clear(c.UserContext(), cycleOf(c, req.Cycle))
	if err != nil {
		return err
	}
	return success(c, fmt.Sprintf("Removed %d entries", result.RemovedCount), result)
}

func (s *Server) export(c *fiber.Ctx) error {
	by, err := reporting.ParseGroupBy(c.Query("tipo", string(reporting.ByTeacher)))
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(c.Query("formato", string(export.JSON)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cycle := cycleOf(c, "")
	view, err := s.engine.Export(c.UserContext(), cycle, by)
	if err != nil {
		return err
	}

	if format == export.JSON {
		return success(c, "Schedule exported", view)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=horarios_%s_%s.xlsx", by, cycle))
	return export.Write(c.Response().BodyWriter(), view, format)
}

func (s *Server) listEntries(c *fiber.Ctx) error {
	entries, err := s.engine.Entries(c.UserContext(), cycleOf(c, ""))
	if err != nil {
		return err
	}
	return success(c, fmt.Sprintf("%d entries", len(entries)), entries)
}

func (s *Server) decodeEntry(c *fiber.Ctx) (string, model.ScheduleEntry, error) {
	var req entryRequest
	if err := s.parseBody(c, &req); err != nil {
		return "", model.ScheduleEntry{}, err
	}
	if err := s.check("entry", req); err != nil {
		return "", model.ScheduleEntry{}, err
	}
	entry, err := req.entry()
	return cycleOf(c, req.Cycle), entry, err
}

func (s *Server) validateEntry(c *fiber.Ctx) error {
	cycle, entry, err := s.decodeEntry(c)
	if err != nil {
		return err
	}

	result, err := s.engine.ValidateEntry(c.UserContext(), cycle, entry)
	if err != nil {
		return err
	}
	message := "Entry is valid"
	if !result.Valid {
		message = fmt.Sprintf("Entry breaks %d rules", len(result.Conflicts))
	}
	return success(c, message, result)
}

func (s *Server) insertEntry(c *fiber.Ctx) error {
	cycle, entry, err := s.decodeEntry(c)
	if err != nil {
		return err
	}

	inserted, err := s.engine.InsertEntry(c.UserContext(), cycle, entry)
	if err != nil {
		return err
	}
	return successWithCode(c, fiber.StatusCreated, "Entry created", inserted)
}

func (s *Server) replaceEntry(c *fiber.Ctx) error {
	cycle, entry, err := s.decodeEntry(c)
	if err != nil {
		return err
	}

	replaced, err := s.engine.ReplaceEntry(c.UserContext(), cycle, c.Params("id"), entry)
	if err != nil {
		return err
	}
	return success(c, "Entry updated", replaced)
}

func (s *Server) deleteEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.engine.DeleteEntry(c.UserContext(), cycleOf(c, ""), id); err != nil {
		return err
	}
	return success(c, "Entry deleted", fiber.Map{"id": id})
}

func (s *Server) teacherSchedule(c *fiber.Ctx) error {
	section, err := s.engine.TeacherSchedule(c.UserContext(), cycleOf(c, ""), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, section.Label, section)
}

func (s *Server) groupSchedule(c *fiber.Ctx) error {
	section, err := s.engine.GroupSchedule(c.UserContext(), cycleOf(c, ""), c.Params("id"))
	if err != nil {
		return err
	}
	return success(c, section.Label, section)
}

func (s *Server) roomAvailability(c *fiber.Ctx) error {
	var req roomAvailabilityRequest
	if err := s.parseBody(c, &req); err != nil {
		return err
	}
	if err := s.check("room", req); err != nil {
		return err
	}
	day, err := model.ParseWeekday(req.Day)
	if err != nil {
		return model.NewValidationError("room", c.Params("id"), "day", err.Error())
	}

	result, err := s.engine.CheckRoomAvailability(c.UserContext(), cycleOf(c, req.Cycle), c.Params("id"), day, req.Start, req.End)
	if err != nil {
		return err
	}
	message := "Room is available"
	if !result.Available {
		message = "Room is not available: " + result.Reason
	}
	return success(c, message, result)
}
