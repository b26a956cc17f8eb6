package service

import (
	"context"
	"slices"
	"testing"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicantFixture(t *testing.T) (*memUOW, *ApplicantService, *models.User, *models.Applicant) {
	t.Helper()
	u := newMemUOW()
	svc := NewApplicantService(u, nil, nil, nil, quietLog())
	user := u.addUser(models.User{Username: "cand", Email: "cand@example.com"})
	a, err := svc.Apply(context.Background(), user.ID, ApplicantInput{
		FullName: "Grace", Email: "grace@example.com", Position: " Sales lead ",
	})
	require.NoError(t, err)
	return u, svc, user, a
}

func TestApplicantApply(t *testing.T) {
	_, svc, user, a := newApplicantFixture(t)
	assert.Equal(t, domain.ApplicantPending, a.Status)
	assert.Equal(t, domain.TrustFeeNotRequired, a.TrustFeeStatus)
	assert.Equal(t, "Sales lead", a.Position)

	mine, err := svc.Mine(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApplicantApprovalOpensTrustFee(t *testing.T) {
	u, svc, _, a := newApplicantFixture(t)
	ctx := context.Background()
	u.with(func(s *memState) { s.settings[domain.SettingApplicantTrustFeeUSDT] = "40" })

	_, err := svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantShortlisted, "strong CV")
	require.NoError(t, err)
	a, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantApproved, "")
	require.NoError(t, err)

	assert.Equal(t, domain.TrustFeePending, a.TrustFeeStatus)
	assert.True(t, dec("40").Equal(a.TrustFee))
	assert.Equal(t, "strong CV", a.AdminNotes, "empty notes keep the previous ones")
}

func TestApplicantAcceptRequiresTrustFee(t *testing.T) {
	u, svc, user, a := newApplicantFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantShortlisted, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantApproved, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantAccepted, "")
	assert.True(t, errors.Is(err, domain.ErrTrustFeeUnpaid))

	u.setBalance(user.ID, domain.PurposeMain, domain.CurrencyUSDT, "30")
	a, err = svc.PayTrustFee(ctx, user.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TrustFeePaid, a.TrustFeeStatus)
	assert.True(t, dec("5").Equal(u.balance(user.ID, domain.PurposeMain, domain.CurrencyUSDT)), "default fee is 25")

	_, err = svc.PayTrustFee(ctx, user.ID, a.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed))

	a, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicantAccepted, a.Status)
}

func TestApplicantTrustFeeLocksApplicantRow(t *testing.T) {
	u, svc, user, a := newApplicantFixture(t)
	ctx := context.Background()
	_, err := svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantShortlisted, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantApproved, "")
	require.NoError(t, err)
	u.setBalance(user.ID, domain.PurposeMain, domain.CurrencyUSDT, "60")

	_, err = svc.PayTrustFee(ctx, user.ID, a.ID)
	require.NoError(t, err)

	locks := u.state().locks
	rowLock := slices.Index(locks, "applicant:"+uintStr(a.ID))
	walletIdx := slices.Index(locks, walletLock(user.ID, domain.PurposeMain, domain.CurrencyUSDT))
	require.GreaterOrEqual(t, rowLock, 0)
	require.GreaterOrEqual(t, walletIdx, 0)
	assert.Less(t, rowLock, walletIdx)

	_, err = svc.MarkTrustFeeCollected(ctx, 1, a.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed), "manual collection after payment is refused")
	_, err = svc.PayTrustFee(ctx, user.ID, a.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed))
	assert.True(t, dec("35").Equal(u.balance(user.ID, domain.PurposeMain, domain.CurrencyUSDT)), "fee is charged once")
}

func TestApplicantNotesTakeRowLock(t *testing.T) {
	u, svc, _, a := newApplicantFixture(t)

	got, err := svc.UpdateNotes(context.Background(), a.ID, "called twice")
	require.NoError(t, err)
	assert.Equal(t, "called twice", got.AdminNotes)
	assert.Contains(t, u.state().locks, "applicant:"+uintStr(a.ID))
}

func TestApplicantPayTrustFeeOtherUser(t *testing.T) {
	u, svc, _, a := newApplicantFixture(t)
	other := u.addUser(models.User{Username: "other", Email: "other@example.com"})

	_, err := svc.PayTrustFee(context.Background(), other.ID, a.ID)
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
}

func TestApplicantManualCollection(t *testing.T) {
	u, svc, _, a := newApplicantFixture(t)
	ctx := context.Background()

	_, err := svc.MarkTrustFeeCollected(ctx, 1, a.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed), "no fee requested yet")

	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantShortlisted, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantApproved, "")
	require.NoError(t, err)

	a, err = svc.MarkTrustFeeCollected(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TrustFeeCollected, a.TrustFeeStatus)
	require.Len(t, u.state().audit, 1)
	assert.Equal(t, "applicant.trust_fee_collected", u.state().audit[0].Action)

	a, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicantAccepted, a.Status)
}

func TestApplicantInvalidTransitions(t *testing.T) {
	_, svc, _, a := newApplicantFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantApproved, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "approval needs a shortlist first")

	_, err = svc.UpdateStatus(ctx, 1, a.ID, "HIRED", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantRejected, "")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, 1, a.ID, domain.ApplicantReviewed, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "rejection is final")
}
