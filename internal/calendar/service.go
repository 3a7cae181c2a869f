package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

const defaultColor = "primary"

// Service manages the shared portal calendar. Events are visible to every
// authenticated user; only admins and team leaders may write.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.CalendarEvent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.CalendarEvent, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	List(ctx context.Context) ([]models.CalendarEvent, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
	ByMonth(ctx context.Context, year, month int) ([]models.CalendarEvent, error)
}

// CreateInput carries a new calendar entry.
type CreateInput struct {
	Title       string
	Description string
	Date        time.Time
	Type        string
	Color       string
}

// UpdateInput patches an existing event.
type UpdateInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Type        *string
	Color       *string
}

type service struct {
	repo Repository
}

// NewService wires the calendar service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("calendar repository required")
	}
	return &service{repo: repo}, nil
}

// canWrite mirrors the portal rule for calendar entries: admins and team
// leaders only, campaign managers excluded.
func canWrite(actor types.Actor) bool {
	return actor.IsAdmin() || actor.Role == enums.RoleTeamLeader
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.CalendarEvent, error) {
	if !canWrite(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin or team leader role required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type is required")
	}

	color := input.Color
	if color == "" {
		color = defaultColor
	}
	event := &models.CalendarEvent{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        input.Date,
		Type:        input.Type,
		Color:       color,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create calendar event")
	}
	return event, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	return s.load(ctx, id)
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.CalendarEvent, error) {
	if !canWrite(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin or team leader role required")
	}
	event, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date cannot be empty")
		}
		event.Date = *input.Date
	}
	if input.Type != nil {
		if strings.TrimSpace(*input.Type) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "type cannot be empty")
		}
		event.Type = *input.Type
	}
	if input.Color != nil {
		event.Color = *input.Color
		if event.Color == "" {
			event.Color = defaultColor
		}
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update calendar event")
	}
	return event, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if !canWrite(actor) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin or team leader role required")
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete calendar event")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.CalendarEvent, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calendar events")
	}
	return events, nil
}

func (s *service) ByDateRange(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	events, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list calendar events by range")
	}
	return events, nil
}

func (s *service) ByMonth(ctx context.Context, year, month int) ([]models.CalendarEvent, error) {
	if month < 1 || month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}
	if year < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is required")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return s.ByDateRange(ctx, start, end)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "calendar event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar event")
	}
	return event, nil
}
