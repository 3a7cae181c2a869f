package sales

import (
	"context"
	stdErrors "errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/internal/notifier"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// bonusThreshold is the lifetime sales total that triggers the bonus alert.
const bonusThreshold = 15

// Service exposes the sales record store and the bonus detector.
type Service interface {
	Log(ctx context.Context, actor types.Actor, input LogInput) (*LogResult, error)
	AdminLog(ctx context.Context, actor types.Actor, input AdminLogInput) (*models.SaleRecord, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.SaleRecord, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	ByUser(ctx context.Context, actor types.Actor, userID uuid.UUID) (*UserSales, error)
	All(ctx context.Context, actor types.Actor) ([]RecordView, error)
	ByDateRange(ctx context.Context, actor types.Actor, start, end time.Time) ([]models.SaleRecord, error)
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type directory interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	SalesStaff(ctx context.Context) ([]models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bonusAlerter interface {
	BonusAchieved(ctx context.Context, achiever *models.User, total int) []notifier.Delivery
}

// LogInput records sales for the authenticated seller.
type LogInput struct {
	SalesCount  int
	Description string
	Date        time.Time
	Type        enums.SaleType
}

// LogResult reports the stored record plus the outcome of bonus detection.
type LogResult struct {
	Record        *models.SaleRecord  `json:"record"`
	CurrentTotal  int                 `json:"current_total"`
	BonusAchieved bool                `json:"bonus_achieved"`
	Notifications []notifier.Delivery `json:"notifications,omitempty"`
}

// AdminLogInput attributes a leaderboard entry to another user.
type AdminLogInput struct {
	UserID      uuid.UUID
	SalesCount  int
	Description string
	Date        time.Time
	Type        enums.SaleType
}

// UpdateInput patches an existing record.
type UpdateInput struct {
	SalesCount  *int
	Description *string
	Date        *time.Time
	Type        *enums.SaleType
}

// Stats summarizes a user's sales records.
type Stats struct {
	Total     int     `json:"total"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	ThisWeek  int     `json:"this_week"`
	ThisMonth int     `json:"this_month"`
}

// UserSales bundles one user's records with their stats.
type UserSales struct {
	Records []models.SaleRecord `json:"records"`
	Stats   Stats               `json:"stats"`
}

// RecordView decorates a record with directory details for admin listings.
type RecordView struct {
	models.SaleRecord
	UserName string     `json:"user_name"`
	UserRole enums.Role `json:"user_role"`
}

// LeaderboardEntry is one seller's lifetime standing.
type LeaderboardEntry struct {
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	Role       enums.Role `json:"role"`
	Position   string     `json:"position"`
	TeamID     string     `json:"team_id"`
	TotalSales int        `json:"total_sales"`
}

type service struct {
	repo      Repository
	directory directory
	tx        txRunner
	alerts    bonusAlerter
	now       func() time.Time
}

// NewService wires the sales service. alerts may be nil; bonus detection
// then still runs but produces no notifications.
func NewService(repo Repository, dir directory, tx txRunner, alerts bonusAlerter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, directory: dir, tx: tx, alerts: alerts, now: time.Now}, nil
}

func (s *service) Log(ctx context.Context, actor types.Actor, input LogInput) (*LogResult, error) {
	if input.SalesCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sales count must be positive")
	}
	saleType := input.Type
	if saleType == "" {
		saleType = enums.SaleTypeDaily
	}
	if !saleType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale type %q", saleType))
	}

	owner, err := s.directory.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	record := &models.SaleRecord{
		UserID:      owner.ID,
		SalesCount:  input.SalesCount,
		Description: input.Description,
		Date:        date,
		Type:        saleType,
	}

	var currentTotal int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale record")
		}
		total, err := repo.TotalForUser(ctx, owner.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sales")
		}
		currentTotal = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &LogResult{Record: record, CurrentTotal: currentTotal}

	// A record crosses the bonus line when the total before it was still
	// under the threshold. One detection per insertion; later deletes or
	// edits can lower the total and make a re-crossing possible. The
	// response always reports a crossing; only selling roles fan out.
	previousTotal := currentTotal - record.SalesCount
	if previousTotal < bonusThreshold && currentTotal >= bonusThreshold {
		result.BonusAchieved = true
		if owner.Role.IsSalesRole() && s.alerts != nil {
			result.Notifications = s.alerts.BonusAchieved(ctx, owner, currentTotal)
		}
	}
	return result, nil
}

// AdminLog stores a record on another user's behalf. Admin-attributed
// entries never run bonus detection.
func (s *service) AdminLog(ctx context.Context, actor types.Actor, input AdminLogInput) (*models.SaleRecord, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if input.SalesCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sales count must be positive")
	}

	userID := input.UserID
	if userID == uuid.Nil {
		userID = actor.ID
	}
	owner, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	saleType := input.Type
	if saleType == "" {
		saleType = enums.SaleTypeDaily
	}
	if !saleType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale type %q", saleType))
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}

	record := &models.SaleRecord{
		UserID:      owner.ID,
		SalesCount:  input.SalesCount,
		Description: input.Description,
		Date:        date,
		Type:        saleType,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale record")
	}
	return record, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.SaleRecord, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != actor.ID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may edit a record")
	}

	if input.SalesCount != nil {
		if *input.SalesCount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sales count must be positive")
		}
		record.SalesCount = *input.SalesCount
	}
	if input.Description != nil {
		record.Description = *input.Description
	}
	if input.Date != nil {
		record.Date = *input.Date
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale type %q", *input.Type))
		}
		record.Type = *input.Type
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale record")
	}
	return record, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	record, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if record.UserID != actor.ID && !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may delete a record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale record")
	}
	return nil
}

func (s *service) ByUser(ctx context.Context, actor types.Actor, userID uuid.UUID) (*UserSales, error) {
	if userID == uuid.Nil {
		userID = actor.ID
	}

	target, err := s.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.ID != target.ID && !actor.IsAdmin() && !(actor.CanManageTeam() && actor.SameTeam(target.TeamID)) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view this user's sales")
	}

	records, err := s.repo.ListByUser(ctx, target.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return &UserSales{Records: records, Stats: s.statsFor(records)}, nil
}

func (s *service) All(ctx context.Context, actor types.Actor) ([]RecordView, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	views := make([]RecordView, 0, len(records))
	for i := range records {
		view := RecordView{SaleRecord: records[i]}
		if owner, err := s.directory.Get(ctx, records[i].UserID); err == nil {
			view.UserName = owner.Name
			view.UserRole = owner.Role
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) ByDateRange(ctx context.Context, actor types.Actor, start, end time.Time) ([]models.SaleRecord, error) {
	if !actor.CanManageTeam() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "team management role required")
	}
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date before start date")
	}

	records, err := s.repo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales by range")
	}
	return records, nil
}

// Leaderboard ranks every seller by lifetime total, highest first.
func (s *service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	staff, err := s.directory.SalesStaff(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(staff))
	for i := range staff {
		seller := &staff[i]
		total, err := s.repo.TotalForUser(ctx, seller.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum sales")
		}
		entries = append(entries, LeaderboardEntry{
			UserID:     seller.ID,
			Name:       seller.Name,
			Role:       seller.Role,
			Position:   seller.Position,
			TeamID:     seller.TeamID,
			TotalSales: total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalSales > entries[j].TotalSales
	})
	return entries, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale record")
	}
	return record, nil
}

func (s *service) statsFor(records []models.SaleRecord) Stats {
	stats := Stats{Count: len(records)}
	if len(records) == 0 {
		return stats
	}

	now := s.now()
	weekStart := startOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, r := range records {
		stats.Total += r.SalesCount
		if !r.Date.Before(weekStart) {
			stats.ThisWeek += r.SalesCount
		}
		if !r.Date.Before(monthStart) {
			stats.ThisMonth += r.SalesCount
		}
	}
	stats.Average = math.Round(float64(stats.Total)/float64(stats.Count)*100) / 100
	return stats
}

// startOfWeek returns local midnight of the most recent Sunday.
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}
