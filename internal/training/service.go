package training

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// Service manages team training material and teach-back confirmations.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.TrainingModule, error)
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.TrainingModule, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.TrainingModule, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	ListByTeam(ctx context.Context, actor types.Actor) ([]models.TrainingModule, error)
	ConfirmTeachBack(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.TrainingModule, error)
}

// CreateInput carries a new training module. Files holds opaque descriptors
// for uploaded material.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Files       json.RawMessage
}

// UpdateInput patches an existing module.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Files       json.RawMessage
}

type service struct {
	repo Repository
}

// NewService wires the training service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("training repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.TrainingModule, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	module := &models.TrainingModule{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Files:       input.Files,
		CreatedBy:   actor.ID,
		TeamID:      actor.TeamID,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create training module")
	}
	return module, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.TrainingModule, error) {
	module, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.SameTeam(module.TeamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's training")
	}
	return module, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.TrainingModule, error) {
	module, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && module.CreatedBy != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin can update a module")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		module.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		module.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		module.Category = strings.TrimSpace(*input.Category)
	}
	if input.Files != nil {
		module.Files = input.Files
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update training module")
	}
	return module, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	module, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && module.CreatedBy != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin can delete a module")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete training module")
	}
	return nil
}

func (s *service) ListByTeam(ctx context.Context, actor types.Actor) ([]models.TrainingModule, error) {
	if actor.TeamID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team id is required")
	}
	modules, err := s.repo.ListByTeam(ctx, actor.TeamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list training modules")
	}
	return modules, nil
}

// ConfirmTeachBack records the actor's confirmation on a module. A user
// confirms a module at most once; repeats return the module unchanged.
func (s *service) ConfirmTeachBack(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.TrainingModule, error) {
	module, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.SameTeam(module.TeamID) && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot confirm another team's training")
	}

	for _, tb := range module.TeachBacks {
		if tb.UserID == actor.ID {
			return module, nil
		}
	}

	module.TeachBacks = append(module.TeachBacks, models.TeachBack{
		UserID:      actor.ID,
		Name:        actor.Name,
		ConfirmedAt: time.Now(),
	})
	if err := s.repo.Update(ctx, module); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record teach-back")
	}
	return module, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.TrainingModule, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "module id is required")
	}
	module, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "training module not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load training module")
	}
	return module, nil
}
