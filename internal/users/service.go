package users

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// Service exposes the user directory.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Profile(ctx context.Context, id uuid.UUID) (Profile, error)
	TeamMembers(ctx context.Context, actor types.Actor, teamID string) ([]Profile, error)
	TeamRoster(ctx context.Context, teamID string) ([]models.User, error)
	Admins(ctx context.Context) ([]models.User, error)
	SalesStaff(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, actor types.Actor, input UpdateProfileInput) (Profile, error)
	AdminUpdate(ctx context.Context, actor types.Actor, id uuid.UUID, input AdminUpdateInput) (Profile, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	Touch(ctx context.Context, user *models.User) error
}

type service struct {
	repo Repository
}

// CreateUserInput carries the fields needed to add a directory entry. The
// password arrives pre-hashed; credential handling lives in the auth service.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Name         string
	Role         enums.Role
	TeamID       string
	Position     string
}

// UpdateProfileInput is the self-service profile patch.
type UpdateProfileInput struct {
	Name     *string
	Position *string
}

// AdminUpdateInput is the manager-level patch for another user's entry.
type AdminUpdateInput struct {
	Name     *string
	Position *string
	Role     *enums.Role
	TeamID   *string
	IsActive *bool
}

// NewService wires a directory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if input.PasswordHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password hash is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", input.Role))
	}
	if input.TeamID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team id is required")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: input.PasswordHash,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		TeamID:       input.TeamID,
		Position:     strings.TrimSpace(input.Position),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) Profile(ctx context.Context, id uuid.UUID) (Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return ProfileFromModel(user), nil
}

func (s *service) TeamMembers(ctx context.Context, actor types.Actor, teamID string) ([]Profile, error) {
	if teamID == "" {
		teamID = actor.TeamID
	}
	if !actor.IsAdmin() && !actor.SameTeam(teamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's members")
	}
	roster, err := s.TeamRoster(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return ProfilesFromModels(roster), nil
}

func (s *service) TeamRoster(ctx context.Context, teamID string) ([]models.User, error) {
	if teamID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team id is required")
	}
	roster, err := s.repo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members")
	}
	return roster, nil
}

func (s *service) Admins(ctx context.Context) ([]models.User, error) {
	admins, err := s.repo.ListByRoles(ctx, enums.RoleAdmin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
	}
	return admins, nil
}

func (s *service) SalesStaff(ctx context.Context) ([]models.User, error) {
	staff, err := s.repo.ListByRoles(ctx, enums.RoleRep, enums.RoleTeamLeader, enums.RoleCampaignManager)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales staff")
	}
	return staff, nil
}

func (s *service) UpdateProfile(ctx context.Context, actor types.Actor, input UpdateProfileInput) (Profile, error) {
	user, err := s.Get(ctx, actor.ID)
	if err != nil {
		return Profile{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return Profile{}, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Position != nil {
		user.Position = strings.TrimSpace(*input.Position)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return ProfileFromModel(user), nil
}

func (s *service) AdminUpdate(ctx context.Context, actor types.Actor, id uuid.UUID, input AdminUpdateInput) (Profile, error) {
	if !actor.IsAdmin() {
		return Profile{}, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return Profile{}, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Position != nil {
		user.Position = strings.TrimSpace(*input.Position)
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return Profile{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", *input.Role))
		}
		user.Role = *input.Role
	}
	if input.TeamID != nil {
		if *input.TeamID == "" {
			return Profile{}, pkgerrors.New(pkgerrors.CodeValidation, "team id cannot be empty")
		}
		user.TeamID = *input.TeamID
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return Profile{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return ProfileFromModel(user), nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if id == actor.ID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

// Touch persists mutable login bookkeeping such as LastLoginAt.
func (s *service) Touch(ctx context.Context, user *models.User) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return nil
}
