package messages

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
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/push"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

// SystemSenderName labels notifications generated by the portal itself.
const SystemSenderName = "System Notification"

// Service exposes team chat and the shared notification store.
type Service interface {
	Send(ctx context.Context, actor types.Actor, input SendInput) (*models.Message, error)
	SendSystem(ctx context.Context, input SystemInput) (*models.Message, error)
	Inbox(ctx context.Context, actor types.Actor) ([]models.Message, error)
	Sent(ctx context.Context, actor types.Actor) ([]models.Message, error)
	Thread(ctx context.Context, actor types.Actor, otherID uuid.UUID) ([]models.Message, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
}

type directory interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SendInput is a user-authored chat message. Without a recipient the
// message goes to the whole team.
type SendInput struct {
	Content     string
	RecipientID *uuid.UUID
}

// SystemInput is a portal-generated notification for a single user.
type SystemInput struct {
	Content     string
	RecipientID uuid.UUID
	TeamID      string
	Type        enums.MessageType
	SenderID    *uuid.UUID
	SenderName  string
}

type service struct {
	repo      Repository
	directory directory
	transport push.Transport
}

// NewService wires the messaging service. transport may be nil; live push
// is then disabled and messages are only persisted.
func NewService(repo Repository, dir directory, transport push.Transport) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("user directory required")
	}
	return &service{repo: repo, directory: dir, transport: transport}, nil
}

func (s *service) Send(ctx context.Context, actor types.Actor, input SendInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}

	msg := &models.Message{
		Content:        content,
		SenderID:       &actor.ID,
		SenderName:     actor.Name,
		TeamID:         actor.TeamID,
		Type:           enums.MessageTypeChat,
		IsGroupMessage: true,
	}

	if input.RecipientID != nil {
		recipient, err := s.directory.Get(ctx, *input.RecipientID)
		if err != nil {
			return nil, err
		}
		msg.RecipientID = &recipient.ID
		msg.IsGroupMessage = false
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}

	s.publish(ctx, msg)
	return msg, nil
}

// SendSystem persists a portal-generated notification. It performs no
// permission checks; callers own recipient resolution.
func (s *service) SendSystem(ctx context.Context, input SystemInput) (*models.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}
	if input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid message type %q", input.Type))
	}

	senderName := input.SenderName
	if senderName == "" {
		senderName = SystemSenderName
	}

	msg := &models.Message{
		Content:         strings.TrimSpace(input.Content),
		SenderID:        input.SenderID,
		SenderName:      senderName,
		RecipientID:     &input.RecipientID,
		TeamID:          input.TeamID,
		Type:            input.Type,
		IsSystemMessage: true,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	s.publish(ctx, msg)
	return msg, nil
}

func (s *service) Inbox(ctx context.Context, actor types.Actor) ([]models.Message, error) {
	msgs, err := s.repo.ListInbox(ctx, actor.TeamID, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inbox")
	}
	return msgs, nil
}

func (s *service) Sent(ctx context.Context, actor types.Actor) ([]models.Message, error) {
	msgs, err := s.repo.ListSent(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sent messages")
	}
	return msgs, nil
}

func (s *service) Thread(ctx context.Context, actor types.Actor, otherID uuid.UUID) ([]models.Message, error) {
	if otherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.directory.Get(ctx, otherID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.Thread(ctx, actor.ID, otherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load thread")
	}
	return msgs, nil
}

func (s *service) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message")
	}

	isSender := msg.SenderID != nil && *msg.SenderID == actor.ID
	if !isSender && !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the sender or an admin may delete a message")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete message")
	}
	return nil
}

// publish pushes the stored message to live subscribers. Push is best
// effort: failures never surface to the caller.
func (s *service) publish(ctx context.Context, msg *models.Message) {
	if s.transport == nil {
		return
	}

	event := push.Event{Type: "message", Payload: msg}
	if msg.RecipientID != nil {
		_ = s.transport.Publish(ctx, push.UserRoom(*msg.RecipientID), event)
		return
	}
	_ = s.transport.Publish(ctx, push.TeamRoom(msg.TeamID), event)
}
