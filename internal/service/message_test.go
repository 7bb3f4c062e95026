package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group_chat/internal/service"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

func newMessageService(messages *fakeMessageRepo) service.MessageService {
	return service.NewMessageService(messages, &fakeAuditRepo{}, logger.NewNop())
}

func TestSend_AssignsSequentialIDs(t *testing.T) {
	svc := newMessageService(newFakeMessageRepo())
	roomID := uuid.New()
	author := uuid.New()

	first, err := svc.Send(context.Background(), roomID, author, "hello")
	require.NoError(t, err)
	second, err := svc.Send(context.Background(), roomID, author, "world")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.Edited)
}

func TestSend_RejectsEmptyBody(t *testing.T) {
	svc := newMessageService(newFakeMessageRepo())

	_, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "   ")

	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestEdit_ReplacesBodyAndMarksEdited(t *testing.T) {
	messages := newFakeMessageRepo()
	svc := newMessageService(messages)
	sent, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "draft")
	require.NoError(t, err)

	edited, err := svc.Edit(context.Background(), sent.RoomID, sent.ID, "final")

	require.NoError(t, err)
	assert.Equal(t, "final", edited.Body)
	assert.True(t, edited.Edited)

	stored, err := messages.GetByID(context.Background(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", stored.Body)
	assert.True(t, stored.Edited)
}

func TestEdit_UnknownMessage(t *testing.T) {
	svc := newMessageService(newFakeMessageRepo())

	_, err := svc.Edit(context.Background(), uuid.New(), 42, "whatever")

	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestDelete_RemovesRow(t *testing.T) {
	messages := newFakeMessageRepo()
	svc := newMessageService(messages)
	sent, err := svc.Send(context.Background(), uuid.New(), uuid.New(), "ephemeral")
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), sent.RoomID, sent.ID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, sent.ID, deleted.ID)

	_, err = messages.GetByID(context.Background(), sent.ID)
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestDelete_UnknownMessage(t *testing.T) {
	svc := newMessageService(newFakeMessageRepo())

	_, err := svc.Delete(context.Background(), uuid.New(), 42, uuid.New())

	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}

func TestEdit_ScopedToRoom(t *testing.T) {
	messages := newFakeMessageRepo()
	svc := newMessageService(messages)
	homeRoom := uuid.New()
	sent, err := svc.Send(context.Background(), homeRoom, uuid.New(), "original")
	require.NoError(t, err)

	// An id from another room is indistinguishable from a missing one.
	_, err = svc.Edit(context.Background(), uuid.New(), sent.ID, "overwritten from elsewhere")
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	stored, err := messages.GetByID(context.Background(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Body)
	assert.False(t, stored.Edited)
	assert.Equal(t, homeRoom, stored.RoomID)
}

func TestDelete_ScopedToRoom(t *testing.T) {
	messages := newFakeMessageRepo()
	svc := newMessageService(messages)
	homeRoom := uuid.New()
	sent, err := svc.Send(context.Background(), homeRoom, uuid.New(), "keep me")
	require.NoError(t, err)

	_, err = svc.Delete(context.Background(), uuid.New(), sent.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	stored, err := messages.GetByID(context.Background(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", stored.Body)
}

func TestHistory_ClampsLimit(t *testing.T) {
	messages := newFakeMessageRepo()
	svc := newMessageService(messages)
	roomID := uuid.New()
	author := uuid.New()
	for i := 0; i < 60; i++ {
		_, err := svc.Send(context.Background(), roomID, author, "msg")
		require.NoError(t, err)
	}

	page, err := svc.History(context.Background(), roomID, 0, 0)

	require.NoError(t, err)
	assert.Len(t, page, 50)
}
