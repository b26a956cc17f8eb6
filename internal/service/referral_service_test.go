package service

import (
	"context"
	"testing"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCodeIsStable(t *testing.T) {
	u := newMemUOW()
	svc := NewReferralService(u, quietLog())
	ctx := context.Background()

	first, err := svc.GetOrCreateCode(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, first.Code, 8)

	second, err := svc.GetOrCreateCode(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestUpdateCodeCooldown(t *testing.T) {
	u := newMemUOW()
	svc := NewReferralService(u, quietLog())
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rc, err := svc.UpdateCode(ctx, 5, "ALPHA_1")
	require.NoError(t, err, "first edit is free")
	assert.Equal(t, "ALPHA_1", rc.Code)

	_, err = svc.UpdateCode(ctx, 5, "ALPHA_2")
	var cd *domain.CooldownError
	require.True(t, errors.As(err, &cd))
	assert.Equal(t, now.Add(domain.ReferralEditCooldown), cd.NextAllowedAt)
	assert.True(t, errors.Is(err, domain.ErrReferralEditCooldown))

	same, err := svc.UpdateCode(ctx, 5, "ALPHA_1")
	require.NoError(t, err, "setting the current code is a no-op")
	assert.Equal(t, "ALPHA_1", same.Code)

	now = now.Add(domain.ReferralEditCooldown)
	rc, err = svc.UpdateCode(ctx, 5, "ALPHA_2")
	require.NoError(t, err)
	assert.Equal(t, "ALPHA_2", rc.Code)
}

func TestUpdateCodeRejectsTakenAndInvalid(t *testing.T) {
	u := newMemUOW()
	svc := NewReferralService(u, quietLog())
	ctx := context.Background()

	_, err := svc.UpdateCode(ctx, 1, "SHARED")
	require.NoError(t, err)

	_, err = svc.UpdateCode(ctx, 2, "shared")
	assert.True(t, errors.Is(err, domain.ErrCodeTaken))

	for _, bad := range []string{"ab", "has space", "way-too-long-for-a-code", "emoji😀"} {
		_, err = svc.UpdateCode(ctx, 2, bad)
		assert.True(t, errors.Is(err, domain.ErrInvalidCode), bad)
	}
}

func TestLinkSignup(t *testing.T) {
	u := newMemUOW()
	svc := NewReferralService(u, quietLog())
	ctx := context.Background()
	referrer := u.addUser(models.User{Username: "ref", Email: "ref@example.com"})
	newbie := u.addUser(models.User{Username: "new", Email: "new@example.com"})

	rc, err := svc.UpdateCode(ctx, referrer.ID, "INVITE")
	require.NoError(t, err)

	require.NoError(t, svc.LinkSignup(ctx, "unknown", newbie))
	assert.Nil(t, newbie.ReferredByID)

	require.NoError(t, svc.LinkSignup(ctx, rc.Code, newbie))
	require.NotNil(t, newbie.ReferredByID)
	assert.Equal(t, referrer.ID, *newbie.ReferredByID)

	stored, err := u.Store().Users().GetByID(ctx, newbie.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReferredByID)

	require.NoError(t, svc.LinkSignup(ctx, rc.Code, newbie), "second link is ignored")
	list, total, err := svc.ListReferrals(ctx, referrer.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "INVITE", list[0].CodeUsed)

	require.NoError(t, svc.LinkSignup(ctx, rc.Code, referrer), "self-referral is ignored")
	assert.Nil(t, referrer.ReferredByID)
}

func TestMyRate(t *testing.T) {
	u := newMemUOW()
	svc := NewReferralService(u, quietLog())
	gold := u.addUser(models.User{Username: "g", Email: "g@example.com", Rank: domain.RankGold})
	odd := u.addUser(models.User{Username: "o", Email: "o@example.com", Rank: "LEGEND"})

	r, err := svc.MyRate(context.Background(), gold.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RankGold, r.Rank)
	assert.True(t, dec("12").Equal(r.Percent))

	r, err = svc.MyRate(context.Background(), odd.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RankStarter, r.Rank)
	assert.True(t, dec("5").Equal(r.Percent))

	assert.Len(t, svc.CommissionRates(), 6)
}
