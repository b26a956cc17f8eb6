package repository

import (
	"context"
	"regexp"
	"testing"

	"digilinex/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffiliateGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAffiliateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `affiliate_applications`") + ".*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).AddRow(4, 9, domain.AffiliateTrustFeePending))

	a, err := repo.GetForUpdate(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint(9), a.UserID)
	assert.Equal(t, domain.AffiliateTrustFeePending, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `applicants`") + ".*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).AddRow(2, 9, domain.ApplicantApproved))

	a, err := repo.GetForUpdate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicantApproved, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `applicants`") + ".*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewApplicantRepository(db).GetForUpdate(context.Background(), 99)
	assert.True(t, errors.Is(err, domain.ErrRecordNotFound))
	assert.Contains(t, err.Error(), "applicant: lock")
}

func TestWrapMapsLockFailuresToConflict(t *testing.T) {
	for _, n := range []uint16{mysqlDeadlock, mysqlLockWaitTimeout} {
		err := wrap(&mysqldrv.MySQLError{Number: n, Message: "try restarting transaction"}, "wallet: lock")
		assert.True(t, errors.Is(err, domain.ErrConflict), "error %d", n)
		assert.Contains(t, err.Error(), "wallet: lock")
	}

	err := wrap(&mysqldrv.MySQLError{Number: 1146, Message: "table missing"}, "wallet: lock")
	assert.False(t, errors.Is(err, domain.ErrConflict))
}

func TestAffiliateLockSurfacesDeadlock(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `affiliate_applications`") + ".*FOR UPDATE").
		WillReturnError(&mysqldrv.MySQLError{Number: mysqlDeadlock, Message: "Deadlock found when trying to get lock"})

	_, err := NewAffiliateRepository(db).GetForUpdate(context.Background(), 4)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
