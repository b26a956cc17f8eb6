package database

import (
	"context"

	"digilinex/config"
	"digilinex/internal/domain"
	"digilinex/internal/models"
	"digilinex/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.ReferralCode{},
		&models.Referral{},
		&models.Commission{},
		&models.DatabaseCategory{},
		&models.DatabasePackage{},
		&models.DigitalProduct{},
		&models.MarketingSoftware{},
		&models.Order{},
		&models.DatabaseOrder{},
		&models.SoftwareOrder{},
		&models.AffiliateApplication{},
		&models.Applicant{},
		&models.Deposit{},
		&models.Notification{},
		&models.SystemSetting{},
		&models.AuditLog{},
	)
}

// Seed inserts default settings and the bootstrap admin. Both are idempotent.
func Seed(ctx context.Context, db *gorm.DB, admin config.AdminConfig, log logrus.FieldLogger) error {
	if err := repository.NewSettingRepository(db).SeedDefaults(ctx, domain.DefaultSettings); err != nil {
		return errors.Wrap(err, "seed settings")
	}
	return SeedAdmin(ctx, db, admin, log)
}

// SeedAdmin creates the admin account from config when no user owns that email yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig, log logrus.FieldLogger) error {
	if admin.Password == "" {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(ctx, admin.Email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := &models.User{
			Username:     admin.Username,
			Email:        admin.Email,
			PasswordHash: string(hash),
			FullName:     "Administrator",
			Role:         domain.RoleAdmin,
			Rank:         domain.RankStarter,
		}
		if err := repository.NewUserRepository(tx).Create(ctx, u); err != nil {
			return errors.Wrap(err, "create admin")
		}
		if err := repository.NewWalletRepository(tx).EnsureAll(ctx, u.ID); err != nil {
			return errors.Wrap(err, "admin wallets")
		}
		log.WithField("email", admin.Email).Info("admin account seeded")
		return nil
	})
}
