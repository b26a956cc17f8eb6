package service

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// walletRef names one wallet a transaction will touch. create allows a missing
// wallet to be opened, as credits do.
type walletRef struct {
	userID   uint
	purpose  string
	currency string
	create   bool
}

func compareWalletRefs(a, b walletRef) int {
	return cmp.Or(
		cmp.Compare(a.userID, b.userID),
		strings.Compare(a.purpose, b.purpose),
		strings.Compare(a.currency, b.currency),
	)
}

// lockWallets takes every row lock up front in (user, purpose, currency) order.
// Money paths touching several wallets call it before debit and credit so
// lock acquisition order is the same in every transaction.
func lockWallets(ctx context.Context, s Store, refs []walletRef) error {
	sorted := slices.Clone(refs)
	slices.SortStableFunc(sorted, compareWalletRefs)
	sorted = slices.CompactFunc(sorted, func(a, b walletRef) bool { return compareWalletRefs(a, b) == 0 })
	for _, r := range sorted {
		if r.create {
			if _, err := s.Wallets().GetOrCreate(ctx, r.userID, r.purpose, r.currency); err != nil {
				return err
			}
			continue
		}
		if _, err := s.Wallets().GetForUpdate(ctx, r.userID, r.purpose, r.currency); err != nil {
			return errors.Wrapf(err, "%s %s wallet", r.purpose, r.currency)
		}
	}
	return nil
}

// debit takes amount from a locked wallet and appends the ledger line.
// The caller must be inside a unit of work.
func debit(ctx context.Context, s Store, userID uint, purpose, currency string, amount decimal.Decimal, txType, ref string) (*models.Wallet, error) {
	w, err := s.Wallets().GetForUpdate(ctx, userID, purpose, currency)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s wallet", purpose, currency)
	}
	if w.Balance.LessThan(amount) {
		return nil, errors.Wrapf(domain.ErrInsufficientBalance, "%s %s wallet", purpose, currency)
	}
	w.Balance = w.Balance.Sub(amount)
	if err := s.Wallets().SetBalance(ctx, w); err != nil {
		return nil, err
	}
	line := &models.WalletTransaction{
		UserID:       userID,
		Purpose:      purpose,
		Currency:     currency,
		Amount:       amount.Neg(),
		BalanceAfter: w.Balance,
		Type:         txType,
		Reference:    ref,
	}
	if err := s.Wallets().RecordTransaction(ctx, line); err != nil {
		return nil, err
	}
	return w, nil
}

// credit adds amount to the wallet, creating it when missing.
func credit(ctx context.Context, s Store, userID uint, purpose, currency string, amount decimal.Decimal, txType, ref string) (*models.Wallet, error) {
	w, err := s.Wallets().GetOrCreate(ctx, userID, purpose, currency)
	if err != nil {
		return nil, err
	}
	w.Balance = w.Balance.Add(amount)
	if err := s.Wallets().SetBalance(ctx, w); err != nil {
		return nil, err
	}
	line := &models.WalletTransaction{
		UserID:       userID,
		Purpose:      purpose,
		Currency:     currency,
		Amount:       amount,
		BalanceAfter: w.Balance,
		Type:         txType,
		Reference:    ref,
	}
	if err := s.Wallets().RecordTransaction(ctx, line); err != nil {
		return nil, err
	}
	return w, nil
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(domain.AmountPlaces)) {
		return errors.Wrap(domain.ErrInvalidAmount, "more than 8 decimal places")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrRecordNotFound)
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
