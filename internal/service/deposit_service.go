package service

import (
	"context"
	"strings"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type DepositInput struct {
	Purpose     string          `json:"purpose"`
	Currency    string          `json:"currency" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	TxReference string          `json:"tx_reference" binding:"required"`
	ProofURL    string          `json:"proof_url"`
}

// DepositService handles manual top-ups reviewed by admins.
type DepositService struct {
	uow      UnitOfWork
	pub      Publisher
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewDepositService(uow UnitOfWork, pub Publisher, notifier Notifier, log logrus.FieldLogger) *DepositService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &DepositService{
		uow:      uow,
		pub:      pub,
		notifier: notifier,
		log:      log.WithField("component", "deposit"),
		now:      time.Now,
	}
}

func (s *DepositService) Create(ctx context.Context, userID uint, in DepositInput) (*models.Deposit, error) {
	if in.Purpose == "" {
		in.Purpose = domain.PurposeMain
	}
	if !domain.IsPurpose(in.Purpose) {
		return nil, domain.ErrInvalidPurpose
	}
	if !domain.IsCurrency(in.Currency) {
		return nil, domain.ErrInvalidCurrency
	}
	if err := validAmount(in.Amount); err != nil {
		return nil, err
	}
	d := &models.Deposit{
		UserID:      userID,
		Purpose:     in.Purpose,
		Currency:    in.Currency,
		Amount:      in.Amount,
		TxReference: strings.TrimSpace(in.TxReference),
		ProofURL:    in.ProofURL,
		Status:      domain.DepositPending,
	}
	if err := s.uow.Store().Deposits().Create(ctx, d); err != nil {
		return nil, err
	}
	s.pub.PublishAdmins(domain.EventDepositStatus, d)
	return d, nil
}

// List returns deposits; userID 0 lists every user's.
func (s *DepositService) List(ctx context.Context, userID uint, status string, page, limit int) ([]models.Deposit, int64, error) {
	return s.uow.Store().Deposits().List(ctx, userID, status, page, limit)
}

// Approve credits the deposit to its wallet. A deposit is settled at most once.
func (s *DepositService) Approve(ctx context.Context, adminID, id uint, note string) (*models.Deposit, error) {
	var (
		d      *models.Deposit
		wallet *models.Wallet
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		if d, err = s.review(ctx, st, adminID, id, domain.DepositApproved, note); err != nil {
			return err
		}
		wallet, err = credit(ctx, st, d.UserID, d.Purpose, d.Currency, d.Amount, domain.WalletTxDeposit, "deposit:"+uintStr(d.ID))
		if err != nil {
			return err
		}
		return st.Deposits().Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(d.UserID, domain.EventWalletUpdated, []models.Wallet{*wallet})
	s.announce(ctx, d, "Deposit approved", d.Amount.String()+" "+d.Currency+" was added to your "+strings.ToLower(d.Purpose)+" wallet.")
	return d, nil
}

func (s *DepositService) Reject(ctx context.Context, adminID, id uint, note string) (*models.Deposit, error) {
	var d *models.Deposit
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		if d, err = s.review(ctx, st, adminID, id, domain.DepositRejected, note); err != nil {
			return err
		}
		return st.Deposits().Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, d, "Deposit rejected", strings.TrimSpace("Your deposit could not be verified. "+note))
	return d, nil
}

func (s *DepositService) review(ctx context.Context, st Store, adminID, id uint, status, note string) (*models.Deposit, error) {
	d, err := st.Deposits().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DepositPending {
		return nil, errors.Wrapf(domain.ErrAlreadyProcessed, "deposit is %s", d.Status)
	}
	now := s.now()
	d.Status = status
	d.ReviewedByID = &adminID
	d.ReviewNote = note
	d.ReviewedAt = &now
	err = st.Audit().Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     "deposit." + strings.ToLower(status),
		Resource:   "deposit",
		ResourceID: uintStr(d.ID),
		Metadata:   d.Amount.String() + " " + d.Currency,
	})
	return d, err
}

func (s *DepositService) announce(ctx context.Context, d *models.Deposit, title, body string) {
	s.pub.Publish(d.UserID, domain.EventDepositStatus, d)
	s.log.WithFields(logrus.Fields{"deposit_id": d.ID, "status": d.Status}).Info("deposit reviewed")
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, d.UserID, "DEPOSIT_"+d.Status, title, body, "/wallet",
		map[string]interface{}{"deposit_id": d.ID}); err != nil {
		s.log.WithError(err).WithField("user_id", d.UserID).Warn("notify failed")
	}
}
