package tests

import (
	"context"
	stdErrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// Service manages knowledge tests, grading, and result access.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.KnowledgeTest, error)
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*TestView, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.KnowledgeTest, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	ListByTeam(ctx context.Context, actor types.Actor) ([]TestView, error)
	Submit(ctx context.Context, actor types.Actor, id uuid.UUID, answers []int) (*models.TestResult, error)
	Results(ctx context.Context, actor types.Actor, id uuid.UUID) ([]models.TestResult, error)
	UserHistory(ctx context.Context, actor types.Actor, userID uuid.UUID) ([]models.TestResult, error)
}

// QuestionView is a question as handed to a taker. The correct answer
// index never leaves the service for non-managers.
type QuestionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// TestView is a knowledge test shaped for the caller's role.
type TestView struct {
	ID               uuid.UUID             `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Questions        []QuestionView        `json:"questions"`
	AnswerKey        []models.TestQuestion `json:"answer_key,omitempty"`
	TimeLimitMinutes int                   `json:"time_limit_minutes"`
	IsActive         bool                  `json:"is_active"`
	CreatedBy        uuid.UUID             `json:"created_by"`
	TeamID           string                `json:"team_id"`
	CreatedAt        time.Time             `json:"created_at"`
}

// CreateInput carries a new knowledge test.
type CreateInput struct {
	Title            string
	Description      string
	Questions        []models.TestQuestion
	TimeLimitMinutes int
}

// UpdateInput patches an existing test.
type UpdateInput struct {
	Title            *string
	Description      *string
	Questions        []models.TestQuestion
	TimeLimitMinutes *int
	IsActive         *bool
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the tests service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tests repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.KnowledgeTest, error) {
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(input.Questions) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one question is required")
	}
	if err := validateQuestions(input.Questions); err != nil {
		return nil, err
	}

	test := &models.KnowledgeTest{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Questions:        input.Questions,
		TimeLimitMinutes: input.TimeLimitMinutes,
		CreatedBy:        actor.ID,
		TeamID:           actor.TeamID,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create test")
	}
	return test, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*TestView, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.SameTeam(test.TeamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's tests")
	}
	if !actor.CanManageTeam() && !test.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "test not found")
	}
	view := viewFor(actor, test)
	return &view, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.KnowledgeTest, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && test.CreatedBy != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin can update a test")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		test.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		test.Description = strings.TrimSpace(*input.Description)
	}
	if input.Questions != nil {
		if err := validateQuestions(input.Questions); err != nil {
			return nil, err
		}
		test.Questions = input.Questions
	}
	if input.TimeLimitMinutes != nil {
		test.TimeLimitMinutes = *input.TimeLimitMinutes
	}
	if input.IsActive != nil {
		test.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, test); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update test")
	}
	return test, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	test, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && test.CreatedBy != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator or an admin can delete a test")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete test")
	}
	return nil
}

// ListByTeam returns the actor's team tests. Non-managers only see active
// tests, with answer keys stripped.
func (s *service) ListByTeam(ctx context.Context, actor types.Actor) ([]TestView, error) {
	if actor.TeamID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team id is required")
	}
	tests, err := s.repo.ListByTeam(ctx, actor.TeamID, !actor.CanManageTeam())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tests")
	}

	views := make([]TestView, 0, len(tests))
	for i := range tests {
		views = append(views, viewFor(actor, &tests[i]))
	}
	return views, nil
}

// Submit grades the actor's answers against the test. Each answer is the
// chosen option index, aligned with the question order; a wrong length is
// rejected before grading. A test may be submitted once per user.
func (s *service) Submit(ctx context.Context, actor types.Actor, id uuid.UUID, answers []int) (*models.TestResult, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.SameTeam(test.TeamID) && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot take another team's test")
	}
	if !test.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "test is not active")
	}
	if len(answers) != len(test.Questions) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("expected %d answers, got %d", len(test.Questions), len(answers)))
	}

	if _, err := s.repo.GetResult(ctx, id, actor.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "test already submitted")
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior submission")
	}

	score := 0
	for i, question := range test.Questions {
		if answers[i] == question.CorrectIndex {
			score++
		}
	}

	total := len(test.Questions)
	result := &models.TestResult{
		TestID:      id,
		UserID:      actor.ID,
		Answers:     answers,
		Score:       score,
		Total:       total,
		Percentage:  math.Round(float64(score)/float64(total)*10000) / 100,
		CompletedAt: s.now(),
	}
	if err := s.repo.CreateResult(ctx, result); err != nil {
		// The unique index backstops concurrent double submits.
		if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "test already submitted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save result")
	}
	return result, nil
}

// Results returns all submissions for a test. Managers only.
func (s *service) Results(ctx context.Context, actor types.Actor, id uuid.UUID) ([]models.TestResult, error) {
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.SameTeam(test.TeamID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another team's results")
	}

	results, err := s.repo.ListResultsByTest(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list results")
	}
	return results, nil
}

// UserHistory returns one user's submissions. Users see their own; seeing
// someone else's requires a management role.
func (s *service) UserHistory(ctx context.Context, actor types.Actor, userID uuid.UUID) ([]models.TestResult, error) {
	if userID == uuid.Nil {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's results")
	}

	results, err := s.repo.ListResultsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user results")
	}
	return results, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.KnowledgeTest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "test id is required")
	}
	test, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "test not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load test")
	}
	return test, nil
}

func validateQuestions(questions []models.TestQuestion) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("question %d has no prompt", i+1))
		}
		if len(q.Options) < 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("question %d needs at least two options", i+1))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("question %d has an out-of-range answer", i+1))
		}
	}
	return nil
}

// viewFor shapes a test for the caller. Managers get the full answer key,
// everyone else gets prompts and options only.
func viewFor(actor types.Actor, test *models.KnowledgeTest) TestView {
	view := TestView{
		ID:               test.ID,
		Title:            test.Title,
		Description:      test.Description,
		TimeLimitMinutes: test.TimeLimitMinutes,
		IsActive:         test.IsActive,
		CreatedBy:        test.CreatedBy,
		TeamID:           test.TeamID,
		CreatedAt:        test.CreatedAt,
	}
	if actor.CanManageTeam() {
		view.AnswerKey = test.Questions
	}
	view.Questions = make([]QuestionView, 0, len(test.Questions))
	for _, q := range test.Questions {
		view.Questions = append(view.Questions, QuestionView{Prompt: q.Prompt, Options: q.Options})
	}
	return view
}
