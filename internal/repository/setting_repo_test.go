package repository

import (
	"context"
	"regexp"
	"testing"

	"digilinex/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSettingGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `system_settings` WHERE `key` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value"}).AddRow(1, domain.SettingCommissionsEnabled, "false"))

	v, err := repo.Get(context.Background(), domain.SettingCommissionsEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingGetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `system_settings`")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value"}))

	_, err := repo.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
	assert.Contains(t, err.Error(), "setting: get nope")
}

func TestSettingSetUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)
	admin := uint(3)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `system_settings`") + ".*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Set(context.Background(), domain.SettingAffiliateTrustFeeUSDT, "12", &admin))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingGetAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `system_settings` ORDER BY `key` ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "value"}).
			AddRow(1, domain.SettingAffiliateTrustFeeUSDT, "10").
			AddRow(2, domain.SettingCommissionsEnabled, "true"))

	list, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "10", list[0].Value)
}

func TestWrapMapsDriverErrors(t *testing.T) {
	assert.NoError(t, wrap(nil, "op"))
	assert.True(t, errors.Is(wrap(gorm.ErrRecordNotFound, "op"), domain.ErrRecordNotFound))
	assert.True(t, errors.Is(wrap(gorm.ErrDuplicatedKey, "op"), domain.ErrDuplicateKey))
	assert.True(t, errors.Is(wrap(errors.New("Error 1062: Duplicate entry 'x' for key 'code'"), "op"), domain.ErrDuplicateKey))

	err := wrap(errors.New("connection reset"), "wallet: lock")
	assert.EqualError(t, err, "wallet: lock: connection reset")
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(0, 20))
	assert.Equal(t, 0, offset(1, 20))
	assert.Equal(t, 40, offset(3, 20))
}
