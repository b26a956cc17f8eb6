package service

import (
	"context"

	"digilinex/internal/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// settingDecimal reads a numeric setting, falling back to its default when unset.
func settingDecimal(ctx context.Context, st Store, key string) (decimal.Decimal, error) {
	v, err := st.Settings().Get(ctx, key)
	if err != nil {
		if !isNotFound(err) {
			return decimal.Zero, err
		}
		v = domain.DefaultSettings[key]
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "setting %s", key)
	}
	return d, nil
}
