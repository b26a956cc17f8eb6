package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PurchaseRequest describes one checkout. SplitWith is empty for a single-wallet payment.
type PurchaseRequest struct {
	UserID    uint
	Kind      string
	ItemID    uint
	Currency  string
	Purpose   string
	SplitWith string
}

type PurchaseResult struct {
	OrderNumber string              `json:"order_number"`
	Kind        string              `json:"kind"`
	Currency    string              `json:"currency"`
	Amount      decimal.Decimal     `json:"amount"`
	Legs        []models.PaymentLeg `json:"legs"`
	Commission  decimal.Decimal     `json:"commission"`
	Order       interface{}         `json:"order"`
}

// SettlementService moves money: purchases, own-wallet transfers and admin adjustments.
type SettlementService struct {
	uow      UnitOfWork
	pub      Publisher
	notifier Notifier
	metrics  Recorder
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewSettlementService(uow UnitOfWork, pub Publisher, notifier Notifier, metrics Recorder, log logrus.FieldLogger) *SettlementService {
	if pub == nil {
		pub = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &SettlementService{
		uow:      uow,
		pub:      pub,
		notifier: notifier,
		metrics:  metrics,
		log:      log.WithField("component", "settlement"),
		now:      time.Now,
	}
}

// SplitLegs divides price between two purposes. The first leg is half the
// price truncated to 8 places; the second takes the remainder.
func SplitLegs(price decimal.Decimal, first, second string) []models.PaymentLeg {
	half := price.Div(decimal.NewFromInt(2)).Truncate(domain.AmountPlaces)
	return []models.PaymentLeg{
		{Purpose: first, Amount: half},
		{Purpose: second, Amount: price.Sub(half)},
	}
}

func (r PurchaseRequest) legs(price decimal.Decimal) []models.PaymentLeg {
	if r.SplitWith == "" {
		return []models.PaymentLeg{{Purpose: r.Purpose, Amount: price}}
	}
	return SplitLegs(price, r.Purpose, r.SplitWith)
}

func (r PurchaseRequest) validate() error {
	switch r.Kind {
	case domain.ItemProduct, domain.ItemDatabasePackage, domain.ItemSoftware:
	default:
		return errors.Wrapf(domain.ErrItemNotFound, "unknown item kind %q", r.Kind)
	}
	if !domain.IsCurrency(r.Currency) {
		return domain.ErrInvalidCurrency
	}
	if !domain.IsPurpose(r.Purpose) {
		return domain.ErrInvalidPurpose
	}
	if r.SplitWith != "" {
		if !domain.IsPurpose(r.SplitWith) {
			return domain.ErrInvalidPurpose
		}
		if r.SplitWith == r.Purpose {
			return domain.ErrSamePurpose
		}
	}
	return nil
}

// purchasable is the snapshot of a catalog item taken inside the transaction.
type purchasable struct {
	price  decimal.Decimal
	title  string
	record func(base models.OrderBase) (interface{}, error)
}

func (s *SettlementService) loadItem(ctx context.Context, st Store, req PurchaseRequest) (*purchasable, error) {
	notFound := func(err error) error {
		if isNotFound(err) {
			return domain.ErrItemNotFound
		}
		return err
	}
	switch req.Kind {
	case domain.ItemProduct:
		p, err := st.Catalog().GetProduct(ctx, req.ItemID)
		if err != nil {
			return nil, notFound(err)
		}
		if !p.IsActive {
			return nil, domain.ErrItemNotFound
		}
		return &purchasable{
			price: p.Price(req.Currency),
			title: p.Title,
			record: func(base models.OrderBase) (interface{}, error) {
				o := &models.Order{OrderBase: base, ProductID: p.ID, ProductTitle: p.Title}
				return o, st.Orders().CreateProductOrder(ctx, o)
			},
		}, nil
	case domain.ItemDatabasePackage:
		p, err := st.Catalog().GetPackage(ctx, req.ItemID)
		if err != nil {
			return nil, notFound(err)
		}
		if !p.IsActive || p.Category == nil || !p.Category.IsActive {
			return nil, domain.ErrItemNotFound
		}
		return &purchasable{
			price: p.Price(req.Currency),
			title: p.Category.Name + " / " + p.Name,
			record: func(base models.OrderBase) (interface{}, error) {
				o := &models.DatabaseOrder{
					OrderBase:      base,
					PackageID:      p.ID,
					CategoryID:     p.CategoryID,
					PackageName:    p.Name,
					CategoryName:   p.Category.Name,
					RecordsCount:   p.RecordsCount,
					DeliveryStatus: domain.DeliveryProcessing,
				}
				return o, st.Orders().CreateDatabaseOrder(ctx, o)
			},
		}, nil
	default:
		sw, err := st.Catalog().GetSoftware(ctx, req.ItemID)
		if err != nil {
			return nil, notFound(err)
		}
		if !sw.IsActive {
			return nil, domain.ErrItemNotFound
		}
		return &purchasable{
			price: sw.Price(req.Currency),
			title: sw.Name,
			record: func(base models.OrderBase) (interface{}, error) {
				o := &models.SoftwareOrder{
					OrderBase:    base,
					SoftwareID:   sw.ID,
					SoftwareName: sw.Name,
					LicenseKey:   uuid.NewString(),
				}
				if sw.TrialDays > 0 {
					end := base.CreatedAt.AddDate(0, 0, sw.TrialDays)
					o.TrialEndsAt = &end
				}
				return o, st.Orders().CreateSoftwareOrder(ctx, o)
			},
		}, nil
	}
}

// Purchase settles a checkout in one transaction: debit every leg, pay the
// referrer's commission and write the order. Any failure leaves nothing behind.
func (s *SettlementService) Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var (
		res      *PurchaseResult
		referrer *models.User
		touched  []models.Wallet
		title    string
	)
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		touched = touched[:0]
		referrer = nil

		item, err := s.loadItem(ctx, st, req)
		if err != nil {
			return err
		}
		if !item.price.IsPositive() {
			return errors.Wrap(domain.ErrInvalidAmount, "item has no price in "+req.Currency)
		}
		title = item.title
		buyer, err := st.Users().GetByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		referrer, err = s.commissionReferrer(ctx, st, buyer)
		if err != nil {
			return err
		}

		orderNumber := "DLX-" + uuid.NewString()
		legs := req.legs(item.price)
		refs := make([]walletRef, 0, len(legs)+1)
		for _, leg := range legs {
			refs = append(refs, walletRef{userID: req.UserID, purpose: leg.Purpose, currency: req.Currency})
		}
		if referrer != nil {
			refs = append(refs, walletRef{userID: referrer.ID, purpose: domain.PurposeMain, currency: req.Currency, create: true})
		}
		if err := lockWallets(ctx, st, refs); err != nil {
			return err
		}
		for _, leg := range legs {
			w, err := debit(ctx, st, req.UserID, leg.Purpose, req.Currency, leg.Amount, domain.WalletTxPurchase, orderNumber)
			if err != nil {
				return err
			}
			touched = append(touched, *w)
		}

		commission := decimal.Zero
		if referrer != nil {
			commission, err = s.payCommission(ctx, st, buyer, referrer, req.Currency, item.price, orderNumber)
			if err != nil {
				return err
			}
		}

		legsJSON, err := json.Marshal(legs)
		if err != nil {
			return err
		}
		base := models.OrderBase{
			OrderNumber:    orderNumber,
			UserID:         req.UserID,
			Currency:       req.Currency,
			Amount:         item.price,
			Legs:           string(legsJSON),
			CommissionPaid: commission,
			CreatedAt:      s.now(),
		}
		if referrer != nil {
			base.ReferrerID = &referrer.ID
		}
		order, err := item.record(base)
		if err != nil {
			return err
		}
		res = &PurchaseResult{
			OrderNumber: orderNumber,
			Kind:        req.Kind,
			Currency:    req.Currency,
			Amount:      item.price,
			Legs:        legs,
			Commission:  commission,
			Order:       order,
		}
		return nil
	})
	if err != nil {
		s.metrics.Purchase(req.Kind, req.Currency, purchaseResult(err))
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"kind":    req.Kind,
			"item_id": req.ItemID,
		}).Info("purchase rejected")
		return nil, err
	}

	s.metrics.Purchase(req.Kind, req.Currency, "ok")
	s.pub.Publish(req.UserID, domain.EventWalletUpdated, touched)
	s.pub.Publish(req.UserID, domain.EventOrderCreated, res)
	s.pub.PublishAdmins(domain.EventOrderCreated, res)
	s.notify(ctx, req.UserID, "ORDER_PLACED", "Order placed",
		fmt.Sprintf("%s for %s %s", title, res.Amount.StringFixed(2), res.Currency), "/orders",
		map[string]interface{}{"order_number": res.OrderNumber, "kind": res.Kind})
	if referrer != nil && res.Commission.IsPositive() {
		s.metrics.Commission(res.Currency, res.Commission)
		s.pub.Publish(referrer.ID, domain.EventCommissionEarned, map[string]interface{}{
			"order_number": res.OrderNumber,
			"currency":     res.Currency,
			"amount":       res.Commission,
		})
		s.notify(ctx, referrer.ID, "COMMISSION_EARNED", "Commission earned",
			fmt.Sprintf("You earned %s %s from a referral purchase", res.Commission.String(), res.Currency), "/affiliate",
			map[string]interface{}{"order_number": res.OrderNumber})
	}
	s.log.WithFields(logrus.Fields{
		"user_id":      req.UserID,
		"order_number": res.OrderNumber,
		"amount":       res.Amount.String(),
		"currency":     res.Currency,
	}).Info("purchase settled")
	return res, nil
}

// commissionReferrer returns the user owed a commission on buyer's purchases,
// or nil when commissions are off or the referrer is missing or deleted.
func (s *SettlementService) commissionReferrer(ctx context.Context, st Store, buyer *models.User) (*models.User, error) {
	if buyer.ReferredByID == nil || *buyer.ReferredByID == buyer.ID {
		return nil, nil
	}
	enabled, err := s.commissionsEnabled(ctx, st)
	if err != nil || !enabled {
		return nil, err
	}
	referrer, err := st.Users().GetByID(ctx, *buyer.ReferredByID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return referrer, nil
}

// payCommission credits the referrer's MAIN wallet with price × rank rate.
func (s *SettlementService) payCommission(ctx context.Context, st Store, buyer, referrer *models.User, currency string, price decimal.Decimal, orderNumber string) (decimal.Decimal, error) {
	amount := domain.Commission(referrer.Rank, price)
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}
	if _, err := credit(ctx, st, referrer.ID, domain.PurposeMain, currency, amount, domain.WalletTxCommission, orderNumber); err != nil {
		return decimal.Zero, err
	}
	err := st.Referrals().CreateCommission(ctx, &models.Commission{
		ReferrerID:  referrer.ID,
		BuyerID:     buyer.ID,
		OrderNumber: orderNumber,
		Rank:        referrer.Rank,
		Percent:     domain.CommissionPercent(referrer.Rank),
		Currency:    currency,
		Amount:      amount,
	})
	if err != nil {
		return decimal.Zero, err
	}
	ref, err := st.Referrals().GetByReferredUser(ctx, buyer.ID)
	switch {
	case err == nil:
		if err := st.Referrals().AddEarnings(ctx, ref.ID, currency, amount); err != nil {
			return decimal.Zero, err
		}
	case !isNotFound(err):
		return decimal.Zero, err
	}
	return amount, nil
}

func (s *SettlementService) commissionsEnabled(ctx context.Context, st Store) (bool, error) {
	v, err := st.Settings().Get(ctx, domain.SettingCommissionsEnabled)
	if err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, err
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		s.log.WithField("value", v).Warn("commissions_enabled is not a boolean, treating as enabled")
		return true, nil
	}
	return on, nil
}

// Transfer moves funds between two of the user's own wallets in one currency.
func (s *SettlementService) Transfer(ctx context.Context, userID uint, from, to, currency string, amount decimal.Decimal) ([]models.Wallet, error) {
	if !domain.IsPurpose(from) || !domain.IsPurpose(to) {
		return nil, domain.ErrInvalidPurpose
	}
	if from == to {
		return nil, domain.ErrSamePurpose
	}
	if !domain.IsCurrency(currency) {
		return nil, domain.ErrInvalidCurrency
	}
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	ref := "TRF-" + uuid.NewString()
	var out []models.Wallet
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		err := lockWallets(ctx, st, []walletRef{
			{userID: userID, purpose: from, currency: currency},
			{userID: userID, purpose: to, currency: currency, create: true},
		})
		if err != nil {
			return err
		}
		src, err := debit(ctx, st, userID, from, currency, amount, domain.WalletTxTransfer, ref)
		if err != nil {
			return err
		}
		dst, err := credit(ctx, st, userID, to, currency, amount, domain.WalletTxTransfer, ref)
		if err != nil {
			return err
		}
		out = []models.Wallet{*src, *dst}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(userID, domain.EventWalletUpdated, out)
	return out, nil
}

// AdjustWallet applies a signed admin correction and records it in the audit log.
func (s *SettlementService) AdjustWallet(ctx context.Context, adminID, userID uint, purpose, currency string, amount decimal.Decimal, note string) (*models.Wallet, error) {
	if !domain.IsPurpose(purpose) {
		return nil, domain.ErrInvalidPurpose
	}
	if !domain.IsCurrency(currency) {
		return nil, domain.ErrInvalidCurrency
	}
	if err := validAmount(amount.Abs()); err != nil {
		return nil, err
	}
	ref := "ADJ-" + uuid.NewString()
	var out *models.Wallet
	err := s.uow.Do(ctx, func(ctx context.Context, st Store) error {
		if _, err := st.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		var err error
		if amount.IsNegative() {
			out, err = debit(ctx, st, userID, purpose, currency, amount.Abs(), domain.WalletTxAdjustment, ref)
		} else {
			out, err = credit(ctx, st, userID, purpose, currency, amount, domain.WalletTxAdjustment, ref)
		}
		if err != nil {
			return err
		}
		meta, _ := json.Marshal(map[string]string{
			"purpose":  purpose,
			"currency": currency,
			"amount":   amount.String(),
			"note":     note,
		})
		return st.Audit().Create(ctx, &models.AuditLog{
			UserID:     &adminID,
			Action:     "wallet.adjust",
			Resource:   "user",
			ResourceID: uintStr(userID),
			Metadata:   string(meta),
		})
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(userID, domain.EventWalletUpdated, []models.Wallet{*out})
	s.log.WithFields(logrus.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"purpose":  purpose,
		"amount":   amount.String(),
		"currency": currency,
	}).Info("wallet adjusted")
	return out, nil
}

func (s *SettlementService) notify(ctx context.Context, userID uint, notifType, title, body, link string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, notifType, title, body, link, data); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("notify failed")
	}
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	default:
		return "error"
	}
}
