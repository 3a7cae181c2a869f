package notifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/apillow22-icdconnect/icd-connect-backend/internal/messages"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// DeliveryStatus reports the outcome of one recipient's notification.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliverySkipped   DeliveryStatus = "skipped"
)

// Delivery is the per-recipient result of a fan-out. Skipped deliveries
// carry the reason; a skip never fails the triggering operation.
type Delivery struct {
	Recipient uuid.UUID      `json:"recipient"`
	Name      string         `json:"name,omitempty"`
	Status    DeliveryStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

// Service fans portal events out to their notification recipients.
type Service interface {
	BonusAchieved(ctx context.Context, achiever *models.User, total int) []Delivery
	ShiftAssignments(ctx context.Context, actor types.Actor, schedule *models.Schedule) []Delivery
}

type adminLister interface {
	Admins(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	messages  messages.Service
	directory adminLister
	logg      *logger.Logger
}

// NewService wires the notification fan-out.
func NewService(msgs messages.Service, dir adminLister, logg *logger.Logger) (Service, error) {
	if msgs == nil {
		return nil, fmt.Errorf("messages service required")
	}
	if dir == nil {
		return nil, fmt.Errorf("user directory required")
	}
	return &service{messages: msgs, directory: dir, logg: logg}, nil
}

// BonusAchieved notifies every admin in the directory that a seller crossed
// the bonus target. The recipient list is deliberately not scoped to the
// achiever's team; admins of all teams receive the alert.
func (s *service) BonusAchieved(ctx context.Context, achiever *models.User, total int) []Delivery {
	if achiever == nil {
		return nil
	}

	admins, err := s.directory.Admins(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "list bonus alert recipients", err)
		}
		return nil
	}

	content := fmt.Sprintf(
		"🎉 BONUS ACHIEVED! %s (%s) has reached the 15-sales bonus target! Total sales: %d",
		achiever.Name, achiever.Position, total,
	)

	deliveries := make([]Delivery, 0, len(admins))
	for i := range admins {
		admin := &admins[i]
		delivery := Delivery{Recipient: admin.ID, Name: admin.Name, Status: DeliveryDelivered}

		_, err := s.messages.SendSystem(ctx, messages.SystemInput{
			Content:     content,
			RecipientID: admin.ID,
			TeamID:      achiever.TeamID,
			Type:        enums.MessageTypeBonusAlert,
		})
		if err != nil {
			delivery.Status = DeliverySkipped
			delivery.Reason = "store notification failed"
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "recipient", admin.ID.String()), "bonus alert delivery failed")
			}
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries
}

// ShiftAssignments sends one private notification per assigned shift. A
// shift whose employee cannot be resolved is skipped, never retried. The
// same employee assigned to several shifts gets one notification per shift.
func (s *service) ShiftAssignments(ctx context.Context, actor types.Actor, schedule *models.Schedule) []Delivery {
	if schedule == nil {
		return nil
	}

	var deliveries []Delivery
	for _, shift := range schedule.Shifts {
		if shift.EmployeeID == "" {
			continue
		}

		employeeID, err := uuid.Parse(shift.EmployeeID)
		if err != nil {
			deliveries = append(deliveries, Delivery{Status: DeliverySkipped, Reason: "invalid employee id"})
			continue
		}

		employee, err := s.directory.Get(ctx, employeeID)
		if err != nil {
			deliveries = append(deliveries, Delivery{Recipient: employeeID, Status: DeliverySkipped, Reason: "employee not found"})
			continue
		}

		content := fmt.Sprintf(
			"You have been assigned a shift: %s from %s to %s. Schedule: %s",
			shift.Day, shift.StartTime, shift.EndTime, schedule.Title,
		)

		delivery := Delivery{Recipient: employee.ID, Name: employee.Name, Status: DeliveryDelivered}
		_, err = s.messages.SendSystem(ctx, messages.SystemInput{
			Content:     content,
			RecipientID: employee.ID,
			TeamID:      schedule.TeamID,
			Type:        enums.MessageTypeShiftAssignment,
			SenderID:    &actor.ID,
			SenderName:  actor.Name,
		})
		if err != nil {
			delivery.Status = DeliverySkipped
			delivery.Reason = "store notification failed"
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries
}
