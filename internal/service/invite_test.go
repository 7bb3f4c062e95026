package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"group_chat/internal/config"
	"group_chat/internal/domain"
	"group_chat/internal/service"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

func newInviteService(rooms *fakeRoomRepo, memberships *fakeMembershipRepo, invites *fakeInviteRepo) service.InviteService {
	cfg := config.InviteConfig{TTL: domain.DefaultInviteTTL, SweepInterval: 10 * time.Minute}
	return service.NewInviteService(invites, rooms, memberships, &fakeAuditRepo{}, &fakeMailer{}, cfg, logger.NewNop())
}

func TestIssue_PublicRoomNotApplicable(t *testing.T) {
	room := publicRoom()
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), &fakeInviteRepo{})

	_, err := svc.Issue(context.Background(), room.ID, room.CreatorID, []string{"a@example.com"})

	assert.ErrorIs(t, err, apperrors.ErrInviteNotApplicable)
}

func TestIssue_RequiresAdmin(t *testing.T) {
	room := privateRoom()
	member := uuid.New()
	memberships := newFakeMembershipRepo(
		&domain.Membership{RoomID: room.ID, UserID: member},
	)
	svc := newInviteService(newFakeRoomRepo(room), memberships, &fakeInviteRepo{})

	_, err := svc.Issue(context.Background(), room.ID, member, []string{"a@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Issue(context.Background(), room.ID, uuid.New(), []string{"a@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestIssue_CreatorIssuesAndSetsExpiry(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	before := time.Now()
	issued, err := svc.Issue(context.Background(), room.ID, room.CreatorID, []string{"a@example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, issued)

	require.Len(t, invites.invites, 1)
	inv := invites.invites[0]
	assert.False(t, inv.Consumed)
	assert.WithinDuration(t, before.Add(domain.DefaultInviteTTL), inv.ExpiresAt, 5*time.Second)
}

func TestIssue_DeduplicatesAndNormalizesRecipients(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	issued, err := svc.Issue(context.Background(), room.ID, room.CreatorID, []string{
		"A@Example.com", " a@example.com ", "b@example.com", "",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, issued)
}

func TestIssue_SkipsRecipientsWithLiveInvite(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	require.NoError(t, invites.Create(context.Background(), &domain.Invite{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Email:     "pending@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	issued, err := svc.Issue(context.Background(), room.ID, room.CreatorID, []string{
		"pending@example.com", "fresh@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"fresh@example.com"}, issued)
	assert.Len(t, invites.invites, 2)
}

func TestIssue_ReissueAllowedAfterExpiry(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	require.NoError(t, invites.Create(context.Background(), &domain.Invite{
		ID:        uuid.New(),
		RoomID:    room.ID,
		Email:     "stale@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	issued, err := svc.Issue(context.Background(), room.ID, room.CreatorID, []string{"stale@example.com"})

	require.NoError(t, err)
	assert.Equal(t, []string{"stale@example.com"}, issued)
}

// Two Issue calls racing for the same address: the insert constraint
// decides, and exactly one live invite exists afterwards.
func TestIssue_ConcurrentIssuanceYieldsOneLiveInvite(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Issue(context.Background(), room.ID, room.CreatorID, []string{"contended@example.com"})
		}(i)
	}
	wg.Wait()

	for i := range errs {
		assert.NoError(t, errs[i], "losing the insert race is not an error")
	}

	live := 0
	invites.mu.Lock()
	for _, inv := range invites.invites {
		if inv.IsLive() {
			live++
		}
	}
	invites.mu.Unlock()
	assert.Equal(t, 1, live)
}

func TestSweepExpired_MarksOnlyPastExpiry(t *testing.T) {
	room := privateRoom()
	invites := &fakeInviteRepo{}
	require.NoError(t, invites.Create(context.Background(), &domain.Invite{
		ID: uuid.New(), RoomID: room.ID, Email: "old@example.com", ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, invites.Create(context.Background(), &domain.Invite{
		ID: uuid.New(), RoomID: room.ID, Email: "new@example.com", ExpiresAt: time.Now().Add(time.Hour),
	}))
	svc := newInviteService(newFakeRoomRepo(room), newFakeMembershipRepo(), invites)

	swept, err := svc.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	live, _ := invites.HasLive(context.Background(), room.ID, "new@example.com")
	assert.True(t, live)
}
