package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AffiliateApply is the registration form of the affiliate program.
type AffiliateApply struct {
	FullName      string `json:"full_name" binding:"required"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	Experience    string `json:"experience"`
	Channels      string `json:"channels"`
	ContactHandle string `json:"contact_handle"`
}

// AutoApproveDelay picks a uniform delay between the auto-approval bounds.
func AutoApproveDelay() time.Duration {
	span := domain.AutoApproveMaxDelay - domain.AutoApproveMinDelay
	return domain.AutoApproveMinDelay + rand.N(span+1)
}

// AffiliateService drives the affiliate application state machine.
type AffiliateService struct {
	uow      UnitOfWork
	pub      Publisher
	notifier Notifier
	metrics  Recorder
	log      logrus.FieldLogger
	now      func() time.Time
	delay    func() time.Duration
}

func NewAffiliateService(uow UnitOfWork, pub Publisher, notifier Notifier, metrics Recorder, log logrus.FieldLogger) *AffiliateService {
	if pub == nil {
		pub = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &AffiliateService{
		uow:      uow,
		pub:      pub,
		notifier: notifier,
		metrics:  metrics,
		log:      log.WithField("component", "affiliate"),
		now:      time.Now,
		delay:    AutoApproveDelay,
	}
}

// Status returns the user's application, or an unsaved NOT_APPLIED one.
func (s *AffiliateService) Status(ctx context.Context, userID uint) (*models.AffiliateApplication, error) {
	app, err := s.uow.Store().Affiliates().GetByUser(ctx, userID)
	if err == nil {
		return app, nil
	}
	if isNotFound(err) {
		return &models.AffiliateApplication{UserID: userID, Status: domain.AffiliateNotApplied}, nil
	}
	return nil, err
}

// Apply submits the form. A rejected applicant may apply again, which resets the record.
func (s *AffiliateService) Apply(ctx context.Context, userID uint, in AffiliateApply) (*models.AffiliateApplication, error) {
	var app *models.AffiliateApplication
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		existing, err := st.Affiliates().GetByUser(ctx, userID)
		if err != nil && !isNotFound(err) {
			return err
		}
		from := domain.AffiliateNotApplied
		if existing != nil {
			from = existing.Status
		}
		if err := domain.CheckAffiliateTransition(from, domain.AffiliatePending); err != nil {
			return err
		}
		if existing == nil {
			app = &models.AffiliateApplication{UserID: userID}
		} else {
			app = existing
			app.TrustFee = decimal.Zero
			app.TrustFeePaidAt = nil
			app.TrustFeeManual = false
			app.ContactAt = nil
			app.AutoApproveAt = nil
			app.ApprovedAt = nil
			app.ReviewedByID = nil
			app.RejectionReason = ""
		}
		app.FullName = strings.TrimSpace(in.FullName)
		app.Phone = in.Phone
		app.Country = in.Country
		app.Experience = in.Experience
		app.Channels = in.Channels
		app.ContactHandle = in.ContactHandle
		app.Status = domain.AffiliatePending
		if existing == nil {
			return st.Affiliates().Create(ctx, app)
		}
		return st.Affiliates().Save(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, app, "Application received", "Your affiliate application is under review.")
	s.pub.PublishAdmins(domain.EventAffiliateStatus, app)
	return app, nil
}

// Review marks a pending application as reviewed.
func (s *AffiliateService) Review(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error) {
	return s.move(ctx, id, domain.AffiliateReviewed, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		app.ReviewedByID = &adminID
		return nil
	}, "Application reviewed", "Your affiliate application has been reviewed.")
}

// RequestTrustFee asks the applicant for the configured trust fee.
func (s *AffiliateService) RequestTrustFee(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error) {
	return s.move(ctx, id, domain.AffiliateTrustFeePending, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		fee, err := settingDecimal(ctx, st, domain.SettingAffiliateTrustFeeUSDT)
		if err != nil {
			return err
		}
		app.TrustFee = fee
		app.ReviewedByID = &adminID
		return nil
	}, "Trust fee requested", "Pay the trust fee from your main USDT wallet to continue.")
}

// PayTrustFee debits the fee from the user's MAIN USDT wallet.
func (s *AffiliateService) PayTrustFee(ctx context.Context, userID uint) (*models.AffiliateApplication, error) {
	app, err := s.uow.Store().Affiliates().GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var wallet *models.Wallet
	app, err = s.move(ctx, app.ID, domain.AffiliatePaid, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		if app.TrustFee.IsPositive() {
			w, err := debit(ctx, st, userID, domain.PurposeMain, domain.CurrencyUSDT, app.TrustFee, domain.WalletTxTrustFee, "affiliate:"+uintStr(app.ID))
			if err != nil {
				return err
			}
			wallet = w
		}
		now := s.now()
		app.TrustFeePaidAt = &now
		return nil
	}, "Trust fee paid", "Thanks! Share your contact details to finish onboarding.")
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		s.pub.Publish(userID, domain.EventWalletUpdated, []models.Wallet{*wallet})
	}
	return app, nil
}

// MarkTrustFeeCollected records a fee collected outside the wallet.
func (s *AffiliateService) MarkTrustFeeCollected(ctx context.Context, adminID, id uint) (*models.AffiliateApplication, error) {
	return s.move(ctx, id, domain.AffiliatePaid, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		now := s.now()
		app.TrustFeePaidAt = &now
		app.TrustFeeManual = true
		app.ReviewedByID = &adminID
		return nil
	}, "Trust fee received", "Your trust fee was confirmed. Share your contact details to finish onboarding.")
}

// SubmitContact stores the contact handle and schedules automatic approval.
func (s *AffiliateService) SubmitContact(ctx context.Context, userID uint, handle string) (*models.AffiliateApplication, error) {
	handle = strings.TrimSpace(handle)
	app, err := s.uow.Store().Affiliates().GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, app.ID, domain.AffiliateContactCollected, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		if handle != "" {
			app.ContactHandle = handle
		}
		now := s.now()
		at := now.Add(s.delay())
		app.ContactAt = &now
		app.AutoApproveAt = &at
		return nil
	}, "Contact received", "Your affiliate account will be activated shortly.")
}

// Approve activates the affiliate. adminID is nil when the scheduler approves.
func (s *AffiliateService) Approve(ctx context.Context, adminID *uint, id uint) (*models.AffiliateApplication, error) {
	return s.move(ctx, id, domain.AffiliateApproved, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		now := s.now()
		app.ApprovedAt = &now
		app.AutoApproveAt = nil
		if adminID != nil {
			app.ReviewedByID = adminID
		}
		return st.Users().UpdateFields(ctx, app.UserID, map[string]interface{}{"is_affiliate": true})
	}, "You're an affiliate", "Your affiliate account is active. Start sharing your referral link.")
}

func (s *AffiliateService) Reject(ctx context.Context, adminID, id uint, reason string) (*models.AffiliateApplication, error) {
	return s.move(ctx, id, domain.AffiliateRejected, func(ctx context.Context, st Store, app *models.AffiliateApplication) error {
		app.RejectionReason = reason
		app.ReviewedByID = &adminID
		app.AutoApproveAt = nil
		return nil
	}, "Application rejected", "Your affiliate application was not approved. "+reason)
}

// ApproveDue approves every application whose auto-approval time has passed.
func (s *AffiliateService) ApproveDue(ctx context.Context) (int, error) {
	due, err := s.uow.Store().Affiliates().ListDueForApproval(ctx, s.now(), 100)
	if err != nil {
		return 0, err
	}
	approved := 0
	for _, app := range due {
		if _, err := s.Approve(ctx, nil, app.ID); err != nil {
			s.log.WithError(err).WithField("application_id", app.ID).Warn("auto-approval failed")
			continue
		}
		approved++
	}
	return approved, nil
}

type affiliateMutation func(ctx context.Context, st Store, app *models.AffiliateApplication) error

// move applies one transition in a transaction and announces it after commit.
func (s *AffiliateService) move(ctx context.Context, id uint, to string, mutate affiliateMutation, title, body string) (*models.AffiliateApplication, error) {
	var app *models.AffiliateApplication
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		app, err = st.Affiliates().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckAffiliateTransition(app.Status, to); err != nil {
			return err
		}
		if err := mutate(ctx, st, app); err != nil {
			return err
		}
		app.Status = to
		return st.Affiliates().Save(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, app, title, body)
	return app, nil
}

func (s *AffiliateService) announce(ctx context.Context, app *models.AffiliateApplication, title, body string) {
	s.metrics.AffiliateTransition(app.Status)
	s.pub.Publish(app.UserID, domain.EventAffiliateStatus, app)
	s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"user_id":        app.UserID,
		"status":         app.Status,
	}).Info("affiliate status changed")
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, app.UserID, "AFFILIATE_"+app.Status, title, strings.TrimSpace(body), "/affiliate",
		map[string]interface{}{"application_id": app.ID, "status": app.Status})
	if err != nil {
		s.log.WithError(err).WithField("user_id", app.UserID).Warn("notify failed")
	}
}
