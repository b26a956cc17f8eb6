package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)

// ReferralService owns referral codes, signup linking and the referral dashboard.
type ReferralService struct {
	uow UnitOfWork
	log logrus.FieldLogger
	now func() time.Time
}

func NewReferralService(uow UnitOfWork, log logrus.FieldLogger) *ReferralService {
	return &ReferralService{uow: uow, log: log.WithField("component", "referral"), now: time.Now}
}

// generateReferralCode returns an 8-character hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetOrCreateCode returns the user's code, creating one on first use.
func (s *ReferralService) GetOrCreateCode(ctx context.Context, userID uint) (*models.ReferralCode, error) {
	refs := s.uow.Store().Referrals()
	rc, err := refs.GetCodeByUser(ctx, userID)
	if err == nil {
		return rc, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		rc = &models.ReferralCode{UserID: userID, Code: code}
		err = refs.CreateCode(ctx, rc)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, err
		}
		// A concurrent request may have created the user's code.
		if existing, err := refs.GetCodeByUser(ctx, userID); err == nil {
			return existing, nil
		}
	}
	return nil, errors.New("referral: could not generate a unique code")
}

// UpdateCode replaces the user's code. Edits are limited to one per cooldown period.
func (s *ReferralService) UpdateCode(ctx context.Context, userID uint, code string) (*models.ReferralCode, error) {
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return nil, domain.ErrInvalidCode
	}
	if _, err := s.GetOrCreateCode(ctx, userID); err != nil {
		return nil, err
	}
	var out *models.ReferralCode
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		rc, err := st.Referrals().GetCodeByUser(ctx, userID)
		if err != nil {
			return err
		}
		if rc.Code == code {
			out = rc
			return nil
		}
		now := s.now()
		if rc.LastEditedAt != nil {
			next := rc.LastEditedAt.Add(domain.ReferralEditCooldown)
			if now.Before(next) {
				return domain.NewCooldownError(next)
			}
		}
		taken, err := st.Referrals().GetCodeByCode(ctx, code)
		switch {
		case err == nil && taken.UserID != userID:
			return domain.ErrCodeTaken
		case err != nil && !isNotFound(err):
			return err
		}
		rc.Code = code
		rc.LastEditedAt = &now
		if err := st.Referrals().UpdateCode(ctx, rc); err != nil {
			if errors.Is(err, domain.ErrDuplicateKey) {
				return domain.ErrCodeTaken
			}
			return err
		}
		out = rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LinkSignup records that newUser joined with code. Unknown codes and
// self-referrals are ignored; a user is only ever linked once.
func (s *ReferralService) LinkSignup(ctx context.Context, code string, newUser *models.User) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		rc, err := st.Referrals().GetCodeByCode(ctx, code)
		if err != nil {
			if isNotFound(err) {
				s.log.WithField("code", code).Info("signup with unknown referral code")
				return nil
			}
			return err
		}
		if rc.UserID == newUser.ID {
			return nil
		}
		if _, err := st.Referrals().GetByReferredUser(ctx, newUser.ID); err == nil {
			return nil
		} else if !isNotFound(err) {
			return err
		}
		if err := st.Referrals().CreateReferral(ctx, &models.Referral{
			ReferrerID:     rc.UserID,
			ReferredUserID: newUser.ID,
			CodeUsed:       rc.Code,
		}); err != nil {
			return err
		}
		referrerID := rc.UserID
		newUser.ReferredByID = &referrerID
		return st.Users().UpdateFields(ctx, newUser.ID, map[string]interface{}{"referred_by_id": referrerID})
	})
}

func (s *ReferralService) ListReferrals(ctx context.Context, userID uint, page, limit int) ([]models.Referral, int64, error) {
	return s.uow.Store().Referrals().ListByReferrer(ctx, userID, page, limit)
}

func (s *ReferralService) Stats(ctx context.Context, userID uint) (*models.ReferralStats, error) {
	return s.uow.Store().Referrals().Stats(ctx, userID)
}

// CommissionRates is the fixed rank table.
func (s *ReferralService) CommissionRates() []domain.RankRate {
	return domain.RankTable
}

// MyRate returns the caller's rank and commission percentage.
func (s *ReferralService) MyRate(ctx context.Context, userID uint) (domain.RankRate, error) {
	u, err := s.uow.Store().Users().GetByID(ctx, userID)
	if err != nil {
		return domain.RankRate{}, err
	}
	rank := u.Rank
	if !domain.IsRank(rank) {
		rank = domain.RankStarter
	}
	return domain.RankRate{Rank: rank, Percent: domain.CommissionPercent(rank)}, nil
}
