package service

import (
	"context"
	"strings"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ApplicantInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Position   string `json:"position" binding:"required"`
	Experience string `json:"experience"`
	ResumeURL  string `json:"resume_url"`
}

// ApplicantService runs the work-with-us hiring funnel.
type ApplicantService struct {
	uow      UnitOfWork
	pub      Publisher
	notifier Notifier
	metrics  Recorder
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewApplicantService(uow UnitOfWork, pub Publisher, notifier Notifier, metrics Recorder, log logrus.FieldLogger) *ApplicantService {
	if pub == nil {
		pub = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &ApplicantService{
		uow:      uow,
		pub:      pub,
		notifier: notifier,
		metrics:  metrics,
		log:      log.WithField("component", "applicant"),
		now:      time.Now,
	}
}

func (s *ApplicantService) Apply(ctx context.Context, userID uint, in ApplicantInput) (*models.Applicant, error) {
	a := &models.Applicant{
		UserID:         userID,
		FullName:       strings.TrimSpace(in.FullName),
		Email:          strings.TrimSpace(in.Email),
		Phone:          in.Phone,
		Position:       strings.TrimSpace(in.Position),
		Experience:     in.Experience,
		ResumeURL:      in.ResumeURL,
		Status:         domain.ApplicantPending,
		TrustFeeStatus: domain.TrustFeeNotRequired,
	}
	if err := s.uow.Store().Applicants().Create(ctx, a); err != nil {
		return nil, err
	}
	s.metrics.ApplicantTransition(a.Status)
	s.pub.PublishAdmins(domain.EventApplicantStatus, a)
	return a, nil
}

func (s *ApplicantService) Mine(ctx context.Context, userID uint) ([]models.Applicant, error) {
	return s.uow.Store().Applicants().ListByUser(ctx, userID)
}

// UpdateStatus moves an applicant through the funnel. Approval opens the trust
// fee; acceptance requires it paid or collected.
func (s *ApplicantService) UpdateStatus(ctx context.Context, adminID, id uint, to, notes string) (*models.Applicant, error) {
	if !domain.IsApplicantStatus(to) {
		return nil, &domain.TransitionError{Entity: "applicant", To: to}
	}
	var a *models.Applicant
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		a, err = st.Applicants().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckApplicantTransition(a.Status, to); err != nil {
			return err
		}
		switch to {
		case domain.ApplicantApproved:
			fee, err := settingDecimal(ctx, st, domain.SettingApplicantTrustFeeUSDT)
			if err != nil {
				return err
			}
			a.TrustFee = fee
			a.TrustFeeStatus = domain.TrustFeePending
		case domain.ApplicantAccepted:
			if a.TrustFeeStatus != domain.TrustFeePaid && a.TrustFeeStatus != domain.TrustFeeCollected {
				return domain.ErrTrustFeeUnpaid
			}
		}
		a.Status = to
		if notes != "" {
			a.AdminNotes = notes
		}
		return st.Applicants().Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"applicant_id": a.ID, "status": a.Status, "admin_id": adminID}).Info("applicant status changed")
	s.announce(ctx, a)
	return a, nil
}

// UpdateNotes edits the admin notes without touching the status.
func (s *ApplicantService) UpdateNotes(ctx context.Context, id uint, notes string) (*models.Applicant, error) {
	var a *models.Applicant
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		a, err = st.Applicants().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		a.AdminNotes = notes
		return st.Applicants().Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// PayTrustFee debits the applicant's trust fee from the MAIN USDT wallet.
func (s *ApplicantService) PayTrustFee(ctx context.Context, userID, id uint) (*models.Applicant, error) {
	var (
		a      *models.Applicant
		wallet *models.Wallet
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		a, err = st.Applicants().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return domain.ErrRecordNotFound
		}
		if a.TrustFeeStatus != domain.TrustFeePending {
			return errors.Wrapf(domain.ErrAlreadyProcessed, "trust fee is %s", a.TrustFeeStatus)
		}
		if a.TrustFee.IsPositive() {
			wallet, err = debit(ctx, st, userID, domain.PurposeMain, domain.CurrencyUSDT, a.TrustFee, domain.WalletTxTrustFee, "applicant:"+uintStr(a.ID))
			if err != nil {
				return err
			}
		}
		now := s.now()
		a.TrustFeeStatus = domain.TrustFeePaid
		a.TrustFeePaidAt = &now
		return st.Applicants().Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		s.pub.Publish(userID, domain.EventWalletUpdated, []models.Wallet{*wallet})
	}
	s.announce(ctx, a)
	return a, nil
}

// MarkTrustFeeCollected records a trust fee collected outside the platform.
func (s *ApplicantService) MarkTrustFeeCollected(ctx context.Context, adminID, id uint) (*models.Applicant, error) {
	var a *models.Applicant
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		var err error
		a, err = st.Applicants().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if a.TrustFeeStatus != domain.TrustFeePending {
			return errors.Wrapf(domain.ErrAlreadyProcessed, "trust fee is %s", a.TrustFeeStatus)
		}
		now := s.now()
		a.TrustFeeStatus = domain.TrustFeeCollected
		a.TrustFeePaidAt = &now
		if err := st.Applicants().Save(ctx, a); err != nil {
			return err
		}
		return st.Audit().Create(ctx, &models.AuditLog{
			UserID:     &adminID,
			Action:     "applicant.trust_fee_collected",
			Resource:   "applicant",
			ResourceID: uintStr(a.ID),
		})
	})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, a)
	return a, nil
}

func (s *ApplicantService) announce(ctx context.Context, a *models.Applicant) {
	s.metrics.ApplicantTransition(a.Status)
	s.pub.Publish(a.UserID, domain.EventApplicantStatus, a)
	s.pub.PublishAdmins(domain.EventApplicantStatus, a)
	if s.notifier == nil {
		return
	}
	body := "Your application for " + a.Position + " is now " + strings.ToLower(a.Status) + "."
	if a.Status == domain.ApplicantApproved {
		body = "You're approved! Pay the trust fee of " + a.TrustFee.String() + " USDT to confirm your place."
	}
	err := s.notifier.Notify(ctx, a.UserID, "APPLICANT_"+a.Status, "Work with us", body, "/work-with-us",
		map[string]interface{}{"applicant_id": a.ID, "status": a.Status, "trust_fee_status": a.TrustFeeStatus})
	if err != nil {
		s.log.WithError(err).WithField("user_id", a.UserID).Warn("notify failed")
	}
}
