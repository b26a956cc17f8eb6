package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidPurpose      = errors.New("invalid wallet purpose")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSamePurpose         = errors.New("split payment needs two different wallets")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrCodeTaken           = errors.New("referral code already taken")
	ErrInvalidCode         = errors.New("referral code must be 4-20 letters, digits, '-' or '_'")
	ErrTrustFeeUnpaid      = errors.New("trust fee has not been paid")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrConflict            = errors.New("concurrent update, retry the request")

	ErrReferralEditCooldown = errors.New("referral code edit cooldown")
)

// CooldownError is returned when a referral code is edited before the cooldown ends.
type CooldownError struct {
	NextAllowedAt time.Time
}

func NewCooldownError(next time.Time) error {
	return &CooldownError{NextAllowedAt: next}
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("referral code can be changed again after %s", e.NextAllowedAt.UTC().Format(time.RFC3339))
}

func (e *CooldownError) Unwrap() error { return ErrReferralEditCooldown }

// TransitionError describes a rejected state machine move.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
