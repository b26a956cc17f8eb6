package service

import (
	"context"
	"testing"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositCreateValidation(t *testing.T) {
	u := newMemUOW()
	svc := NewDepositService(u, nil, nil, quietLog())
	ctx := context.Background()

	d, err := svc.Create(ctx, 1, DepositInput{Currency: domain.CurrencyUSDT, Amount: dec("25"), TxReference: " 0xabc "})
	require.NoError(t, err)
	assert.Equal(t, domain.PurposeMain, d.Purpose, "purpose defaults to MAIN")
	assert.Equal(t, "0xabc", d.TxReference)
	assert.Equal(t, domain.DepositPending, d.Status)

	_, err = svc.Create(ctx, 1, DepositInput{Currency: "BTC", Amount: dec("1"), TxReference: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidCurrency))

	_, err = svc.Create(ctx, 1, DepositInput{Currency: domain.CurrencyINR, Amount: dec("-1"), TxReference: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestDepositApproveCreditsOnce(t *testing.T) {
	u := newMemUOW()
	pub := &recorder{}
	svc := NewDepositService(u, pub, nil, quietLog())
	ctx := context.Background()
	user := u.addUser(models.User{Username: "dep", Email: "dep@example.com"})

	d, err := svc.Create(ctx, user.ID, DepositInput{Purpose: domain.PurposeMining, Currency: domain.CurrencyINR, Amount: dec("1500"), TxReference: "UPI-1"})
	require.NoError(t, err)

	d, err = svc.Approve(ctx, 99, d.ID, "checked")
	require.NoError(t, err)
	assert.Equal(t, domain.DepositApproved, d.Status)
	require.NotNil(t, d.ReviewedByID)
	assert.Equal(t, uint(99), *d.ReviewedByID)
	assert.True(t, dec("1500").Equal(u.balance(user.ID, domain.PurposeMining, domain.CurrencyINR)))
	assert.True(t, pub.has(domain.EventWalletUpdated))

	_, err = svc.Approve(ctx, 99, d.ID, "again")
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed))
	_, err = svc.Reject(ctx, 99, d.ID, "late")
	assert.True(t, errors.Is(err, domain.ErrAlreadyProcessed))
	assert.True(t, dec("1500").Equal(u.balance(user.ID, domain.PurposeMining, domain.CurrencyINR)))

	audit := u.state().audit
	require.Len(t, audit, 1)
	assert.Equal(t, "deposit.approved", audit[0].Action)
}

func TestDepositReject(t *testing.T) {
	u := newMemUOW()
	svc := NewDepositService(u, nil, nil, quietLog())
	ctx := context.Background()
	user := u.addUser(models.User{Username: "dep", Email: "dep@example.com"})

	d, err := svc.Create(ctx, user.ID, DepositInput{Currency: domain.CurrencyUSDT, Amount: dec("10"), TxReference: "0xdef"})
	require.NoError(t, err)
	d, err = svc.Reject(ctx, 7, d.ID, "hash not found")
	require.NoError(t, err)
	assert.Equal(t, domain.DepositRejected, d.Status)
	assert.Equal(t, "hash not found", d.ReviewNote)
	assert.True(t, u.balance(user.ID, domain.PurposeMain, domain.CurrencyUSDT).IsZero())

	list, total, err := svc.List(ctx, 0, domain.DepositRejected, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)
}
