package schedules

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/internal/notifier"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// Service manages team schedules and their shift notifications.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*Result, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*Result, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Schedule, error)
	ListByTeam(ctx context.Context, actor types.Actor) ([]models.Schedule, error)
}

type shiftNotifier interface {
	ShiftAssignments(ctx context.Context, actor types.Actor, schedule *models.Schedule) []notifier.Delivery
}

// CreateInput builds a new schedule for the actor's team.
type CreateInput struct {
	Title       string
	Description string
	WeekOf      time.Time
	Type        enums.ScheduleType
	Activities  json.RawMessage
	Shifts      []models.Shift
}

// UpdateInput patches an existing schedule.
type UpdateInput struct {
	Title       *string
	Description *string
	WeekOf      *time.Time
	Type        *enums.ScheduleType
	Activities  json.RawMessage
	Shifts      []models.Shift
}

// Result bundles a stored schedule with the notifications its shifts
// produced.
type Result struct {
	Schedule      *models.Schedule    `json:"schedule"`
	Notifications []notifier.Delivery `json:"notifications,omitempty"`
}

type service struct {
	repo   Repository
	shifts shiftNotifier
}

// NewService wires the schedules service. shifts may be nil; assignments
// are then stored without notifying anyone.
func NewService(repo Repository, shifts shiftNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedules repository required")
	}
	return &service{repo: repo, shifts: shifts}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*Result, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.WeekOf.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "week is required")
	}

	scheduleType := input.Type
	if scheduleType == "" {
		scheduleType = enums.ScheduleTypeWork
	}
	if !scheduleType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid schedule type %q", scheduleType))
	}

	schedule := &models.Schedule{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		WeekOf:      input.WeekOf,
		Type:        scheduleType,
		Activities:  input.Activities,
		Shifts:      input.Shifts,
		CreatedBy:   actor.ID,
		CreatorName: actor.Name,
		TeamID:      actor.TeamID,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create schedule")
	}

	return &Result{Schedule: schedule, Notifications: s.notify(ctx, actor, schedule)}, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*Result, error) {
	schedule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin may edit a schedule")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		schedule.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		schedule.Description = *input.Description
	}
	if input.WeekOf != nil {
		schedule.WeekOf = *input.WeekOf
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid schedule type %q", *input.Type))
		}
		schedule.Type = *input.Type
	}
	if input.Activities != nil {
		schedule.Activities = input.Activities
	}

	notifyShifts := false
	if input.Shifts != nil {
		schedule.Shifts = input.Shifts
		notifyShifts = true
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update schedule")
	}

	result := &Result{Schedule: schedule}
	if notifyShifts {
		result.Notifications = s.notify(ctx, actor, schedule)
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	schedule, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if schedule.CreatedBy != actor.ID && !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin may delete a schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete schedule")
	}
	return nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Schedule, error) {
	schedule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.SameTeam(schedule.TeamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "schedule belongs to another team")
	}
	return schedule, nil
}

func (s *service) ListByTeam(ctx context.Context, actor types.Actor) ([]models.Schedule, error) {
	schedules, err := s.repo.ListByTeam(ctx, actor.TeamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list schedules")
	}
	return schedules, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "schedule id is required")
	}
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	return schedule, nil
}

func (s *service) notify(ctx context.Context, actor types.Actor, schedule *models.Schedule) []notifier.Delivery {
	if s.shifts == nil || len(schedule.Shifts) == 0 {
		return nil
	}
	return s.shifts.ShiftAssignments(ctx, actor, schedule)
}
