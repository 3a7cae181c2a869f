package messages

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/db/models"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/enums"
	pkgerrors "github.com/apillow22-icdconnect/icd-connect-backend/pkg/errors"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/push"
	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/types"
)

type fakeRepository struct {
	msgs map[uuid.UUID]*models.Message
	seq  []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{msgs: make(map[uuid.UUID]*models.Message)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	cp := *msg
	f.msgs[msg.ID] = &cp
	f.seq = append(f.seq, msg.ID)
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	if m, ok := f.msgs[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListInbox(_ context.Context, teamID string, userID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for i := len(f.seq) - 1; i >= 0; i-- {
		m := f.msgs[f.seq[i]]
		if m == nil {
			continue
		}
		inTeam := m.TeamID == teamID && (m.IsGroupMessage || (m.RecipientID != nil && *m.RecipientID == userID) || (m.SenderID != nil && *m.SenderID == userID))
		addressed := m.RecipientID != nil && *m.RecipientID == userID
		if inTeam || addressed {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListSent(_ context.Context, userID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for i := len(f.seq) - 1; i >= 0; i-- {
		m := f.msgs[f.seq[i]]
		if m != nil && m.SenderID != nil && *m.SenderID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepository) Thread(_ context.Context, a, b uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, id := range f.seq {
		m := f.msgs[id]
		if m == nil || m.IsGroupMessage || m.SenderID == nil || m.RecipientID == nil {
			continue
		}
		if (*m.SenderID == a && *m.RecipientID == b) || (*m.SenderID == b && *m.RecipientID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.msgs, id)
	return nil
}

type fakeDirectory struct {
	users map[uuid.UUID]*models.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeDirectory) add(teamID string) *models.User {
	u := &models.User{ID: uuid.New(), Name: "Member", Role: enums.RoleRep, TeamID: teamID}
	f.users[u.ID] = u
	return u
}

func (f *fakeDirectory) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

type recordingTransport struct {
	events []push.Event
	rooms  []string
}

func (r *recordingTransport) Publish(_ context.Context, room string, event push.Event) error {
	r.rooms = append(r.rooms, room)
	r.events = append(r.events, event)
	return nil
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestSendGroupMessageGoesToTeamRoom(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	transport := &recordingTransport{}
	svc, err := NewService(repo, dir, transport)
	require.NoError(t, err)

	actor := types.Actor{ID: uuid.New(), Name: "Sarah", Role: enums.RoleTeamLeader, TeamID: "team1"}
	msg, err := svc.Send(context.Background(), actor, SendInput{Content: "Standup in 5"})
	require.NoError(t, err)

	assert.True(t, msg.IsGroupMessage)
	assert.Equal(t, enums.MessageTypeChat, msg.Type)
	assert.Nil(t, msg.RecipientID)
	require.Len(t, transport.rooms, 1)
	assert.Equal(t, push.TeamRoom("team1"), transport.rooms[0])
}

func TestSendPrivateMessageRequiresExistingRecipient(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	transport := &recordingTransport{}
	svc, err := NewService(repo, dir, transport)
	require.NoError(t, err)

	actor := types.Actor{ID: uuid.New(), Name: "Sarah", Role: enums.RoleRep, TeamID: "team1"}

	ghost := uuid.New()
	_, err = svc.Send(context.Background(), actor, SendInput{Content: "hi", RecipientID: &ghost})
	assertCode(t, err, pkgerrors.CodeNotFound)

	recipient := dir.add("team1")
	msg, err := svc.Send(context.Background(), actor, SendInput{Content: "hi", RecipientID: &recipient.ID})
	require.NoError(t, err)
	assert.False(t, msg.IsGroupMessage)
	require.Len(t, transport.rooms, 1)
	assert.Equal(t, push.UserRoom(recipient.ID), transport.rooms[0])
}

func TestSendRejectsEmptyContent(t *testing.T) {
	svc, err := NewService(newFakeRepository(), newFakeDirectory(), nil)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), types.Actor{ID: uuid.New()}, SendInput{Content: "   "})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSendSystemDefaultsSenderName(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	svc, err := NewService(repo, dir, nil)
	require.NoError(t, err)

	recipient := dir.add("team1")
	msg, err := svc.SendSystem(context.Background(), SystemInput{
		Content:     "🎉 BONUS ACHIEVED!",
		RecipientID: recipient.ID,
		TeamID:      "team1",
		Type:        enums.MessageTypeBonusAlert,
	})
	require.NoError(t, err)
	assert.True(t, msg.IsSystemMessage)
	assert.Equal(t, SystemSenderName, msg.SenderName)
	assert.Nil(t, msg.SenderID)
}

func TestInboxContainsGroupAddressedAndOwnMessages(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	svc, err := NewService(repo, dir, nil)
	require.NoError(t, err)

	me := dir.add("team1")
	mate := dir.add("team1")
	actorMe := types.Actor{ID: me.ID, Name: me.Name, Role: me.Role, TeamID: me.TeamID}
	actorMate := types.Actor{ID: mate.ID, Name: mate.Name, Role: mate.Role, TeamID: mate.TeamID}

	_, err = svc.Send(context.Background(), actorMate, SendInput{Content: "group"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), actorMate, SendInput{Content: "private to me", RecipientID: &me.ID})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), actorMe, SendInput{Content: "mine", RecipientID: &mate.ID})
	require.NoError(t, err)

	inbox, err := svc.Inbox(context.Background(), actorMe)
	require.NoError(t, err)
	assert.Len(t, inbox, 3)
	// Newest first.
	assert.Equal(t, "mine", inbox[0].Content)
}

func TestThreadOrdersOldestFirst(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	svc, err := NewService(repo, dir, nil)
	require.NoError(t, err)

	a := dir.add("team1")
	b := dir.add("team1")
	actorA := types.Actor{ID: a.ID, TeamID: "team1"}
	actorB := types.Actor{ID: b.ID, TeamID: "team1"}

	_, err = svc.Send(context.Background(), actorA, SendInput{Content: "first", RecipientID: &b.ID})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), actorB, SendInput{Content: "second", RecipientID: &a.ID})
	require.NoError(t, err)

	thread, err := svc.Thread(context.Background(), actorA, b.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Content)
	assert.Equal(t, "second", thread[1].Content)
}

func TestDeleteOnlySenderOrAdmin(t *testing.T) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	svc, err := NewService(repo, dir, nil)
	require.NoError(t, err)

	sender := types.Actor{ID: uuid.New(), Name: "S", Role: enums.RoleRep, TeamID: "team1"}
	msg, err := svc.Send(context.Background(), sender, SendInput{Content: "oops"})
	require.NoError(t, err)

	stranger := types.Actor{ID: uuid.New(), Role: enums.RoleRep, TeamID: "team1"}
	assertCode(t, svc.Delete(context.Background(), stranger, msg.ID), pkgerrors.CodeForbidden)

	admin := types.Actor{ID: uuid.New(), Role: enums.RoleAdmin, TeamID: "team1"}
	require.NoError(t, svc.Delete(context.Background(), admin, msg.ID))

	assertCode(t, svc.Delete(context.Background(), sender, msg.ID), pkgerrors.CodeNotFound)
}
