package service

import (
	"context"
	"slices"
	"testing"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type affiliateFixture struct {
	uow     *memUOW
	svc     *AffiliateService
	metrics *countingRecorder
	user    *models.User
	admin   uint
	clock   time.Time
}

func newAffiliateFixture(t *testing.T) *affiliateFixture {
	t.Helper()
	u := newMemUOW()
	f := &affiliateFixture{
		uow:     u,
		metrics: newCountingRecorder(),
		user:    u.addUser(models.User{Username: "aff", Email: "aff@example.com"}),
		admin:   u.addUser(models.User{Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}).ID,
		clock:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewAffiliateService(u, &recorder{}, nil, f.metrics, quietLog())
	f.svc.now = func() time.Time { return f.clock }
	f.svc.delay = func() time.Duration { return 10 * time.Minute }
	return f
}

// walkToContact drives a fresh application up to CONTACT_COLLECTED.
func (f *affiliateFixture) walkToContact(t *testing.T) *models.AffiliateApplication {
	t.Helper()
	ctx := context.Background()
	f.uow.setBalance(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT, "15")

	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: " Ada  "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", app.FullName)

	_, err = f.svc.Review(ctx, f.admin, app.ID)
	require.NoError(t, err)
	app, err = f.svc.RequestTrustFee(ctx, f.admin, app.ID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(app.TrustFee), "default fee, got %s", app.TrustFee)

	app, err = f.svc.PayTrustFee(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, app.TrustFeePaidAt)

	app, err = f.svc.SubmitContact(ctx, f.user.ID, "@ada")
	require.NoError(t, err)
	return app
}

func TestAffiliateStatusWithoutApplication(t *testing.T) {
	f := newAffiliateFixture(t)
	app, err := f.svc.Status(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliateNotApplied, app.Status)
	assert.Zero(t, app.ID)
}

func TestAffiliateFullFlow(t *testing.T) {
	f := newAffiliateFixture(t)
	app := f.walkToContact(t)

	assert.Equal(t, domain.AffiliateContactCollected, app.Status)
	assert.Equal(t, "@ada", app.ContactHandle)
	require.NotNil(t, app.AutoApproveAt)
	assert.Equal(t, f.clock.Add(10*time.Minute), *app.AutoApproveAt)
	assert.True(t, dec("5").Equal(f.uow.balance(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT)))

	app, err := f.svc.Approve(context.Background(), &f.admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliateApproved, app.Status)
	assert.Nil(t, app.AutoApproveAt)

	u, err := f.uow.Store().Users().GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, u.IsAffiliate)

	assert.Equal(t, []string{
		domain.AffiliatePending,
		domain.AffiliateReviewed,
		domain.AffiliateTrustFeePending,
		domain.AffiliatePaid,
		domain.AffiliateContactCollected,
		domain.AffiliateApproved,
	}, f.metrics.affiliate)
}

func TestAffiliateRejectsSkippedSteps(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada"})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, &f.admin, app.ID)
	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, domain.AffiliatePending, te.From)
	assert.Equal(t, domain.AffiliateApproved, te.To)

	_, err = f.svc.PayTrustFee(ctx, f.user.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	_, err = f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada again"})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "pending application cannot re-apply")
}

func TestAffiliatePayTrustFeeInsufficientKeepsStatus(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada"})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, f.admin, app.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestTrustFee(ctx, f.admin, app.ID)
	require.NoError(t, err)

	_, err = f.svc.PayTrustFee(ctx, f.user.ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))

	app, err = f.svc.Status(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliateTrustFeePending, app.Status)
	assert.Nil(t, app.TrustFeePaidAt)
}

func TestAffiliatePayTrustFeeLocksApplicationFirst(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	f.uow.setBalance(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT, "25")
	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada"})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, f.admin, app.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestTrustFee(ctx, f.admin, app.ID)
	require.NoError(t, err)

	_, err = f.svc.PayTrustFee(ctx, f.user.ID)
	require.NoError(t, err)

	locks := f.uow.state().locks
	appLock := slices.Index(locks, "affiliate:"+uintStr(app.ID))
	walletIdx := slices.Index(locks, walletLock(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT))
	require.GreaterOrEqual(t, appLock, 0, "application row is locked")
	require.GreaterOrEqual(t, walletIdx, 0)
	assert.Less(t, appLock, walletIdx, "status is read under the application lock before the wallet is touched")

	_, err = f.svc.PayTrustFee(ctx, f.user.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "a second payment sees PAID")
	_, err = f.svc.MarkTrustFeeCollected(ctx, f.admin, app.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.True(t, dec("15").Equal(f.uow.balance(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT)), "fee is charged once")
}

func TestAffiliateRejectAndReapply(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada"})
	require.NoError(t, err)

	app, err = f.svc.Reject(ctx, f.admin, app.ID, "incomplete profile")
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliateRejected, app.Status)
	assert.Equal(t, "incomplete profile", app.RejectionReason)

	again, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, app.ID, again.ID)
	assert.Equal(t, domain.AffiliatePending, again.Status)
	assert.Empty(t, again.RejectionReason)
	assert.Nil(t, again.ReviewedByID)
}

func TestAffiliateMarkTrustFeeCollected(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, f.user.ID, AffiliateApply{FullName: "Ada"})
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, f.admin, app.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestTrustFee(ctx, f.admin, app.ID)
	require.NoError(t, err)

	app, err = f.svc.MarkTrustFeeCollected(ctx, f.admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliatePaid, app.Status)
	assert.True(t, app.TrustFeeManual)
	assert.True(t, f.uow.balance(f.user.ID, domain.PurposeMain, domain.CurrencyUSDT).IsZero())
}

func TestApproveDueHonoursWindow(t *testing.T) {
	f := newAffiliateFixture(t)
	ctx := context.Background()
	app := f.walkToContact(t)

	n, err := f.svc.ApproveDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "not due yet")

	f.clock = f.clock.Add(10 * time.Minute)
	n, err = f.svc.ApproveDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.uow.Store().Affiliates().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AffiliateApproved, got.Status)
	require.NotNil(t, got.ReviewedByID)
	assert.Equal(t, f.admin, *got.ReviewedByID, "scheduler keeps the reviewing admin")

	n, err = f.svc.ApproveDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "approved applications are not picked again")
}

func TestAutoApproveDelayWithinBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		d := AutoApproveDelay()
		assert.GreaterOrEqual(t, d, domain.AutoApproveMinDelay)
		assert.LessOrEqual(t, d, domain.AutoApproveMaxDelay)
	}
}
