package repository

import (
	"strings"

	"digilinex/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MySQL server error numbers that abort a transaction which may succeed on retry.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// wrap maps gorm/driver errors onto domain errors and annotates the rest with op.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(domain.ErrRecordNotFound, op)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
		return errors.Wrap(domain.ErrDuplicateKey, op)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout) {
		return errors.Wrap(domain.ErrConflict, op)
	}
	return errors.Wrap(err, op)
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
