package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"digilinex/config"
	"digilinex/internal/auth"
	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrUsernameExists = errors.New("username already taken")
	ErrInvalidCreds   = errors.New("invalid email or password")
	ErrNotAdmin       = errors.New("admin access required")
	ErrNoPassword     = errors.New("account uses Google sign-in; set a password first")
)

type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,min=3,max=64"`
	Password     string `json:"password" binding:"required,min=8"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	ReferralCode string `json:"referral_code"`
}

// GoogleProfile is the identity returned by Google after sign-in.
type GoogleProfile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

type AuthService struct {
	cfg       *config.JWTConfig
	uow       UnitOfWork
	referrals *ReferralService
	log       logrus.FieldLogger
}

func NewAuthService(cfg *config.JWTConfig, uow UnitOfWork, referrals *ReferralService, log logrus.FieldLogger) *AuthService {
	return &AuthService{cfg: cfg, uow: uow, referrals: referrals, log: log.WithField("component", "auth")}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *auth.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	users := s.uow.Store().Users()
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !isNotFound(err) {
		return nil, nil, err
	}
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return nil, nil, ErrUsernameExists
	} else if !isNotFound(err) {
		return nil, nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	u := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		Country:      in.Country,
		Role:         domain.RoleUser,
		Rank:         domain.RankStarter,
	}
	if err := s.createUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}
	s.afterSignup(ctx, u, in.ReferralCode)
	pair, err := auth.GeneratePair(s.cfg, u.ID, u.Email, u.Role)
	return u, pair, err
}

// createUser inserts the user with all six wallets.
func (s *AuthService) createUser(ctx context.Context, u *models.User) error {
	return s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		if err := st.Users().Create(ctx, u); err != nil {
			return err
		}
		return st.Wallets().EnsureAll(ctx, u.ID)
	})
}

func (s *AuthService) afterSignup(ctx context.Context, u *models.User, referralCode string) {
	if s.referrals == nil {
		return
	}
	if err := s.referrals.LinkSignup(ctx, referralCode, u); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("link referral")
	}
	if _, err := s.referrals.GetOrCreateCode(ctx, u.ID); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("create referral code")
	}
}

// Login accepts an email or a username as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, *auth.TokenPair, error) {
	users := s.uow.Store().Users()
	identifier = strings.TrimSpace(identifier)
	var (
		u   *models.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = users.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrInvalidCreds
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCreds
	}
	pair, err := auth.GeneratePair(s.cfg, u.ID, u.Email, u.Role)
	return u, pair, err
}

// AdminLogin is Login restricted to admin accounts.
func (s *AuthService) AdminLogin(ctx context.Context, identifier, password string) (*models.User, *auth.TokenPair, error) {
	u, pair, err := s.Login(ctx, identifier, password)
	if err != nil {
		return nil, nil, err
	}
	if !u.IsAdmin() {
		s.log.WithField("user_id", u.ID).Warn("non-admin attempted admin login")
		return nil, nil, ErrNotAdmin
	}
	return u, pair, nil
}

// LoginWithGoogle finds the user by Google id, links an existing email account,
// or creates a new one. isNew reports whether an account was created.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p GoogleProfile, referralCode string) (*models.User, *auth.TokenPair, bool, error) {
	users := s.uow.Store().Users()
	u, err := users.GetByGoogleID(ctx, p.ID)
	if err == nil {
		pair, err := auth.GeneratePair(s.cfg, u.ID, u.Email, u.Role)
		return u, pair, false, err
	}
	if !isNotFound(err) {
		return nil, nil, false, err
	}
	gid := p.ID
	email := strings.ToLower(p.Email)
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		existing.GoogleID = &gid
		if existing.AvatarURL == "" {
			existing.AvatarURL = p.Picture
		}
		if err := users.Update(ctx, existing); err != nil {
			return nil, nil, false, err
		}
		pair, err := auth.GeneratePair(s.cfg, existing.ID, existing.Email, existing.Role)
		return existing, pair, false, err
	} else if !isNotFound(err) {
		return nil, nil, false, err
	}

	username, err := s.freeUsername(ctx, p.Name, email)
	if err != nil {
		return nil, nil, false, err
	}
	u = &models.User{
		Email:     email,
		Username:  username,
		GoogleID:  &gid,
		FullName:  p.Name,
		AvatarURL: p.Picture,
		Role:      domain.RoleUser,
		Rank:      domain.RankStarter,
	}
	if err := s.createUser(ctx, u); err != nil {
		return nil, nil, false, err
	}
	s.afterSignup(ctx, u, referralCode)
	pair, err := auth.GeneratePair(s.cfg, u.ID, u.Email, u.Role)
	return u, pair, true, err
}

// freeUsername derives a username from the display name or email and
// appends a short number until it is unused.
func (s *AuthService) freeUsername(ctx context.Context, name, email string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		local, _, _ := strings.Cut(email, "@")
		base = slug.Make(local)
	}
	if base == "" {
		base = "user"
	}
	if len(base) > 48 {
		base = base[:48]
	}
	candidate := base
	for i := 0; i < 10; i++ {
		_, err := s.uow.Store().Users().GetByUsername(ctx, candidate)
		if isNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, rand.IntN(100000))
	}
	return "", ErrUsernameExists
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	users := s.uow.Store().Users()
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return ErrInvalidCreds
	}
	if u.PasswordHash == "" {
		return ErrNoPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	userID, err := auth.ParseRefreshToken(s.cfg, refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.uow.Store().Users().GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return auth.GeneratePair(s.cfg, u.ID, u.Email, u.Role)
}
