package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

const (
	defaultActivityLimit = 20
	defaultActivityDays  = 7
)

// Activity is one row of the recent-activity feed, shaped for direct
// client display.
type Activity struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Timestamp   time.Time  `json:"timestamp"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Details     string     `json:"details"`
	Icon        string     `json:"icon"`
	Priority    string     `json:"priority"`
}

// PeriodSummary counts one period's activity.
type PeriodSummary struct {
	Sales       int `json:"sales"`
	StarsEarned int `json:"stars_earned,omitempty"`
	StarsSpent  int `json:"stars_spent,omitempty"`
	Messages    int `json:"messages,omitempty"`
}

// Summary is the dashboard's headline numbers.
type Summary struct {
	Today     PeriodSummary `json:"today"`
	ThisWeek  PeriodSummary `json:"this_week"`
	ThisMonth PeriodSummary `json:"this_month"`
}

// ActivityQuery bounds the feed. Zero values fall back to the defaults
// (20 entries over the last 7 days).
type ActivityQuery struct {
	Limit int
	Days  int
}

// Service aggregates the caller's recent activity across the portal's
// stores into a single feed.
type Service interface {
	RecentActivities(ctx context.Context, actor types.Actor, query ActivityQuery) ([]Activity, error)
	ActivitySummary(ctx context.Context, actor types.Actor) (*Summary, error)
	ClearActivities(ctx context.Context, actor types.Actor) error
	ResetActivities(ctx context.Context, actor types.Actor) error
}

type salesSource interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SaleRecord, error)
}

type starsSource interface {
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.StarHistoryEntry, error)
}

type messageSource interface {
	ListInbox(ctx context.Context, teamID string, userID uuid.UUID) ([]models.Message, error)
}

type scheduleSource interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.Schedule, error)
}

type service struct {
	sales     salesSource
	stars     starsSource
	messages  messageSource
	schedules scheduleSource
	now       func() time.Time

	mu      sync.Mutex
	cleared map[uuid.UUID]struct{}
}

// NewService wires the dashboard aggregation over the portal's stores.
func NewService(sales salesSource, stars starsSource, messages messageSource, schedules scheduleSource) (Service, error) {
	if sales == nil {
		return nil, fmt.Errorf("sales source required")
	}
	if stars == nil {
		return nil, fmt.Errorf("stars source required")
	}
	if messages == nil {
		return nil, fmt.Errorf("message source required")
	}
	if schedules == nil {
		return nil, fmt.Errorf("schedule source required")
	}
	return &service{
		sales:     sales,
		stars:     stars,
		messages:  messages,
		schedules: schedules,
		now:       time.Now,
		cleared:   make(map[uuid.UUID]struct{}),
	}, nil
}

func (s *service) RecentActivities(ctx context.Context, actor types.Actor, query ActivityQuery) ([]Activity, error) {
	s.mu.Lock()
	_, isCleared := s.cleared[actor.ID]
	s.mu.Unlock()
	if isCleared {
		return []Activity{}, nil
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	days := query.Days
	if days <= 0 {
		days = defaultActivityDays
	}
	cutoff := s.now().AddDate(0, 0, -days)

	var feed []Activity

	sales, err := s.sales.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales activity")
	}
	for _, sale := range sales {
		if sale.Date.Before(cutoff) {
			continue
		}
		userID := sale.UserID
		feed = append(feed, Activity{
			ID:          sale.ID,
			Type:        "sale",
			Timestamp:   sale.CreatedAt,
			UserID:      &userID,
			Title:       "Sales Activity",
			Description: sale.Description,
			Details:     fmt.Sprintf("%d sales recorded", sale.SalesCount),
			Icon:        "💰",
			Priority:    "high",
		})
	}

	history, err := s.stars.HistoryByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load star activity")
	}
	for _, entry := range history {
		if entry.CreatedAt.Before(cutoff) {
			continue
		}
		feed = append(feed, starActivity(entry))
	}

	schedules, err := s.schedules.ListByTeam(ctx, actor.TeamID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule activity")
	}
	for _, schedule := range schedules {
		if schedule.CreatedAt.Before(cutoff) {
			continue
		}
		createdBy := schedule.CreatedBy
		feed = append(feed, Activity{
			ID:          schedule.ID,
			Type:        "schedule_created",
			Timestamp:   schedule.CreatedAt,
			UserID:      &createdBy,
			Title:       "Schedule Created",
			Description: schedule.Title,
			Details:     fmt.Sprintf("Week of %s", schedule.WeekOf.Format("2006-01-02")),
			Icon:        "📅",
			Priority:    "medium",
		})
	}

	messages, err := s.messages.ListInbox(ctx, actor.TeamID, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message activity")
	}
	for _, msg := range messages {
		if msg.CreatedAt.Before(cutoff) || !involvesUser(msg, actor.ID) {
			continue
		}
		feed = append(feed, messageActivity(msg))
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	if feed == nil {
		feed = []Activity{}
	}
	return feed, nil
}

func (s *service) ActivitySummary(ctx context.Context, actor types.Actor) (*Summary, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	sales, err := s.sales.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales activity")
	}
	history, err := s.stars.HistoryByUser(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load star activity")
	}
	messages, err := s.messages.ListInbox(ctx, actor.TeamID, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message activity")
	}

	summary := &Summary{}
	for _, sale := range sales {
		if !sale.Date.Before(startOfDay) {
			summary.Today.Sales++
		}
		if !sale.Date.Before(startOfWeek) {
			summary.ThisWeek.Sales++
		}
		if !sale.Date.Before(startOfMonth) {
			summary.ThisMonth.Sales++
		}
	}
	for _, entry := range history {
		amount := 0
		if entry.Amount != nil {
			amount = *entry.Amount
		}
		switch entry.Type {
		case enums.StarEventEarned:
			if !entry.CreatedAt.Before(startOfDay) {
				summary.Today.StarsEarned += amount
			}
			if !entry.CreatedAt.Before(startOfWeek) {
				summary.ThisWeek.StarsEarned += amount
			}
		case enums.StarEventSpent:
			if !entry.CreatedAt.Before(startOfDay) {
				summary.Today.StarsSpent += amount
			}
			if !entry.CreatedAt.Before(startOfWeek) {
				summary.ThisWeek.StarsSpent += amount
			}
		}
	}
	for _, msg := range messages {
		if involvesUser(msg, actor.ID) && !msg.CreatedAt.Before(startOfDay) {
			summary.Today.Messages++
		}
	}
	return summary, nil
}

// ClearActivities hides the feed for the caller until reset. The marker is
// process state, matching the feed's ephemeral nature.
func (s *service) ClearActivities(_ context.Context, actor types.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared[actor.ID] = struct{}{}
	return nil
}

func (s *service) ResetActivities(_ context.Context, actor types.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cleared, actor.ID)
	return nil
}

func involvesUser(msg models.Message, userID uuid.UUID) bool {
	if msg.SenderID != nil && *msg.SenderID == userID {
		return true
	}
	return msg.RecipientID != nil && *msg.RecipientID == userID
}

func starActivity(entry models.StarHistoryEntry) Activity {
	amount := 0
	if entry.Amount != nil {
		amount = *entry.Amount
	}
	activity := Activity{
		ID:          entry.ID,
		Timestamp:   entry.CreatedAt,
		UserID:      entry.UserID,
		Description: entry.Reason,
		Priority:    "medium",
	}
	if entry.Type == enums.StarEventSpent {
		activity.Type = "star_spent"
		activity.Title = "Stars Spent"
		activity.Details = fmt.Sprintf("-%d stars", amount)
		activity.Icon = "💫"
		return activity
	}
	activity.Type = "star_earned"
	activity.Title = "Stars Earned"
	activity.Details = fmt.Sprintf("+%d stars", amount)
	activity.Icon = "⭐"
	return activity
}

func messageActivity(msg models.Message) Activity {
	activity := Activity{
		ID:        msg.ID,
		Timestamp: msg.CreatedAt,
		UserID:    msg.SenderID,
	}
	if msg.Type == enums.MessageTypeShiftAssignment {
		activity.Type = "shift_assigned"
		activity.Title = "Shift Assigned"
		activity.Description = fmt.Sprintf("Shift assigned by %s", msg.SenderName)
		activity.Details = msg.Content
		activity.Icon = "⏰"
		activity.Priority = "high"
		return activity
	}

	content := msg.Content
	if len(content) > 100 {
		content = content[:100] + "..."
	}
	activity.Type = "message"
	activity.Title = "Private Message"
	if msg.IsGroupMessage {
		activity.Title = "Team Message"
	}
	activity.Description = content
	activity.Details = fmt.Sprintf("From %s", msg.SenderName)
	activity.Icon = "💬"
	activity.Priority = "low"
	return activity
}
