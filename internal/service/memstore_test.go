package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"digilinex/internal/domain"
	"digilinex/internal/models"

	"github.com/shopspring/decimal"
)

type walletKey struct {
	userID   uint
	purpose  string
	currency string
}

// memState is the whole fake database. Values, not pointers, so a shallow
// clone of every map is a full snapshot.
type memState struct {
	nextID      uint
	users       map[uint]models.User
	wallets     map[walletKey]models.Wallet
	txs         []models.WalletTransaction
	products    map[uint]models.DigitalProduct
	packages    map[uint]models.DatabasePackage
	software    map[uint]models.MarketingSoftware
	orders      []models.Order
	dbOrders    map[uint]models.DatabaseOrder
	swOrders    []models.SoftwareOrder
	codes       map[uint]models.ReferralCode
	referrals   map[uint]models.Referral
	commissions []models.Commission
	affiliates  map[uint]models.AffiliateApplication
	applicants  map[uint]models.Applicant
	deposits    map[uint]models.Deposit
	settings    map[string]string
	audit       []models.AuditLog
	locks       []string
}

func (s *memState) clone() *memState {
	c := *s
	c.users = maps.Clone(s.users)
	c.wallets = maps.Clone(s.wallets)
	c.txs = slices.Clone(s.txs)
	c.products = maps.Clone(s.products)
	c.packages = maps.Clone(s.packages)
	c.software = maps.Clone(s.software)
	c.orders = slices.Clone(s.orders)
	c.dbOrders = maps.Clone(s.dbOrders)
	c.swOrders = slices.Clone(s.swOrders)
	c.codes = maps.Clone(s.codes)
	c.referrals = maps.Clone(s.referrals)
	c.commissions = slices.Clone(s.commissions)
	c.affiliates = maps.Clone(s.affiliates)
	c.applicants = maps.Clone(s.applicants)
	c.deposits = maps.Clone(s.deposits)
	c.settings = maps.Clone(s.settings)
	c.audit = slices.Clone(s.audit)
	c.locks = slices.Clone(s.locks)
	return &c
}

func (s *memState) id() uint {
	s.nextID++
	return s.nextID
}

// memUOW serialises every unit of work and restores the snapshot when fn fails.
type memUOW struct {
	mu sync.Mutex
	st *memState
}

func newMemUOW() *memUOW {
	return &memUOW{st: &memState{
		users:      map[uint]models.User{},
		wallets:    map[walletKey]models.Wallet{},
		products:   map[uint]models.DigitalProduct{},
		packages:   map[uint]models.DatabasePackage{},
		software:   map[uint]models.MarketingSoftware{},
		dbOrders:   map[uint]models.DatabaseOrder{},
		codes:      map[uint]models.ReferralCode{},
		referrals:  map[uint]models.Referral{},
		affiliates: map[uint]models.AffiliateApplication{},
		applicants: map[uint]models.Applicant{},
		deposits:   map[uint]models.Deposit{},
		settings:   map[string]string{},
	}}
}

func (u *memUOW) Store() Store { return memStore{u} }

func (u *memUOW) Do(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	u.mu.Lock()
	snapshot := u.st.clone()
	u.mu.Unlock()

	err := fn(ctx, memStore{u})

	if err != nil {
		u.mu.Lock()
		u.st = snapshot
		u.mu.Unlock()
	}
	return err
}

// state returns the live state for assertions.
func (u *memUOW) state() *memState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.st
}

func (u *memUOW) with(fn func(s *memState)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u.st)
}

// lock records a row lock in acquisition order.
func (u *memUOW) lock(name string) {
	u.with(func(s *memState) { s.locks = append(s.locks, name) })
}

// Fixtures

func (u *memUOW) addUser(user models.User) *models.User {
	u.with(func(s *memState) {
		if user.ID == 0 {
			user.ID = s.id()
		}
		if user.Role == "" {
			user.Role = domain.RoleUser
		}
		if user.Rank == "" {
			user.Rank = domain.RankStarter
		}
		s.users[user.ID] = user
		for _, p := range domain.Purposes {
			for _, c := range domain.Currencies {
				k := walletKey{user.ID, p, c}
				s.wallets[k] = models.Wallet{ID: s.id(), UserID: user.ID, Purpose: p, Currency: c, Balance: decimal.Zero}
			}
		}
	})
	return &user
}

func (u *memUOW) setBalance(userID uint, purpose, currency, amount string) {
	u.with(func(s *memState) {
		k := walletKey{userID, purpose, currency}
		w := s.wallets[k]
		w.Balance = decimal.RequireFromString(amount)
		s.wallets[k] = w
	})
}

func (u *memUOW) balance(userID uint, purpose, currency string) decimal.Decimal {
	var b decimal.Decimal
	u.with(func(s *memState) { b = s.wallets[walletKey{userID, purpose, currency}].Balance })
	return b
}

func (u *memUOW) addProduct(p models.DigitalProduct) *models.DigitalProduct {
	u.with(func(s *memState) {
		p.ID = s.id()
		s.products[p.ID] = p
	})
	return &p
}

func (u *memUOW) addPackage(p models.DatabasePackage) *models.DatabasePackage {
	u.with(func(s *memState) {
		p.ID = s.id()
		s.packages[p.ID] = p
	})
	return &p
}

func (u *memUOW) addSoftware(sw models.MarketingSoftware) *models.MarketingSoftware {
	u.with(func(s *memState) {
		sw.ID = s.id()
		s.software[sw.ID] = sw
	})
	return &sw
}

type memStore struct{ u *memUOW }

func (m memStore) Users() UserStore           { return memUsers(m) }
func (m memStore) Wallets() WalletStore       { return memWallets(m) }
func (m memStore) Catalog() CatalogStore      { return memCatalog(m) }
func (m memStore) Orders() OrderStore         { return memOrders(m) }
func (m memStore) Referrals() ReferralStore   { return memReferrals(m) }
func (m memStore) Affiliates() AffiliateStore { return memAffiliates(m) }
func (m memStore) Applicants() ApplicantStore { return memApplicants(m) }
func (m memStore) Deposits() DepositStore     { return memDeposits(m) }
func (m memStore) Settings() SettingStore     { return memSettings(m) }
func (m memStore) Audit() AuditStore          { return memAudit(m) }

// Users

type memUsers memStore

func (r memUsers) Create(_ context.Context, user *models.User) error {
	var err error
	r.u.with(func(s *memState) {
		for _, other := range s.users {
			if other.Email == user.Email || other.Username == user.Username {
				err = domain.ErrDuplicateKey
				return
			}
		}
		user.ID = s.id()
		s.users[user.ID] = *user
	})
	return err
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	var out *models.User
	r.u.with(func(s *memState) {
		for _, user := range s.users {
			if match(user) {
				out = &user
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrRecordNotFound
	}
	return out, nil
}

func (r memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r memUsers) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r memUsers) Update(_ context.Context, user *models.User) error {
	r.u.with(func(s *memState) { s.users[user.ID] = *user })
	return nil
}

func (r memUsers) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	var err error
	r.u.with(func(s *memState) {
		user, ok := s.users[id]
		if !ok {
			err = domain.ErrRecordNotFound
			return
		}
		for k, v := range fields {
			switch k {
			case "is_affiliate":
				user.IsAffiliate = v.(bool)
			case "referred_by_id":
				id := v.(uint)
				user.ReferredByID = &id
			case "password_hash":
				user.PasswordHash = v.(string)
			case "rank":
				user.Rank = v.(string)
			case "role":
				user.Role = v.(string)
			case "username":
				user.Username = v.(string)
			}
		}
		s.users[id] = user
	})
	return err
}

// Wallets

type memWallets memStore

func (r memWallets) Get(_ context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	var (
		w  models.Wallet
		ok bool
	)
	r.u.with(func(s *memState) { w, ok = s.wallets[walletKey{userID, purpose, currency}] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &w, nil
}

func (r memWallets) GetForUpdate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	r.u.lock(fmt.Sprintf("wallet:%d:%s:%s", userID, purpose, currency))
	w, err := r.Get(ctx, userID, purpose, currency)
	if err != nil {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

func (r memWallets) GetOrCreate(ctx context.Context, userID uint, purpose, currency string) (*models.Wallet, error) {
	if w, err := r.GetForUpdate(ctx, userID, purpose, currency); err == nil {
		return w, nil
	}
	w := models.Wallet{UserID: userID, Purpose: purpose, Currency: currency, Balance: decimal.Zero}
	r.u.with(func(s *memState) {
		w.ID = s.id()
		s.wallets[walletKey{userID, purpose, currency}] = w
	})
	return &w, nil
}

func (r memWallets) EnsureAll(ctx context.Context, userID uint) error {
	for _, p := range domain.Purposes {
		for _, c := range domain.Currencies {
			if _, err := r.GetOrCreate(ctx, userID, p, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r memWallets) ListByUser(_ context.Context, userID uint) ([]models.Wallet, error) {
	var out []models.Wallet
	r.u.with(func(s *memState) {
		for k, w := range s.wallets {
			if k.userID == userID {
				out = append(out, w)
			}
		}
	})
	return out, nil
}

func (r memWallets) SetBalance(_ context.Context, w *models.Wallet) error {
	r.u.with(func(s *memState) { s.wallets[walletKey{w.UserID, w.Purpose, w.Currency}] = *w })
	return nil
}

func (r memWallets) RecordTransaction(_ context.Context, tx *models.WalletTransaction) error {
	r.u.with(func(s *memState) {
		tx.ID = s.id()
		s.txs = append(s.txs, *tx)
	})
	return nil
}

func (r memWallets) ListTransactions(_ context.Context, userID uint, txType string, _, _ int) ([]models.WalletTransaction, int64, error) {
	var out []models.WalletTransaction
	r.u.with(func(s *memState) {
		for _, tx := range s.txs {
			if tx.UserID == userID && (txType == "" || tx.Type == txType) {
				out = append(out, tx)
			}
		}
	})
	return out, int64(len(out)), nil
}

// Catalog

type memCatalog memStore

func (r memCatalog) GetProduct(_ context.Context, id uint) (*models.DigitalProduct, error) {
	var (
		p  models.DigitalProduct
		ok bool
	)
	r.u.with(func(s *memState) { p, ok = s.products[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &p, nil
}

func (r memCatalog) GetPackage(_ context.Context, id uint) (*models.DatabasePackage, error) {
	var (
		p  models.DatabasePackage
		ok bool
	)
	r.u.with(func(s *memState) { p, ok = s.packages[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &p, nil
}

func (r memCatalog) GetSoftware(_ context.Context, id uint) (*models.MarketingSoftware, error) {
	var (
		sw models.MarketingSoftware
		ok bool
	)
	r.u.with(func(s *memState) { sw, ok = s.software[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &sw, nil
}

// Orders

type memOrders memStore

func (r memOrders) CreateProductOrder(_ context.Context, o *models.Order) error {
	r.u.with(func(s *memState) {
		o.ID = s.id()
		s.orders = append(s.orders, *o)
	})
	return nil
}

func (r memOrders) CreateDatabaseOrder(_ context.Context, o *models.DatabaseOrder) error {
	r.u.with(func(s *memState) {
		o.ID = s.id()
		s.dbOrders[o.ID] = *o
	})
	return nil
}

func (r memOrders) CreateSoftwareOrder(_ context.Context, o *models.SoftwareOrder) error {
	r.u.with(func(s *memState) {
		o.ID = s.id()
		s.swOrders = append(s.swOrders, *o)
	})
	return nil
}

func (r memOrders) GetDatabaseOrder(_ context.Context, id uint) (*models.DatabaseOrder, error) {
	var (
		o  models.DatabaseOrder
		ok bool
	)
	r.u.with(func(s *memState) { o, ok = s.dbOrders[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &o, nil
}

func (r memOrders) MarkDelivered(_ context.Context, id uint, key string, at time.Time) error {
	r.u.with(func(s *memState) {
		o := s.dbOrders[id]
		o.DeliveryStatus = domain.DeliveryDelivered
		o.DeliveryKey = key
		o.DeliveredAt = &at
		s.dbOrders[id] = o
	})
	return nil
}

// Referrals

type memReferrals memStore

func (r memReferrals) GetCodeByUser(_ context.Context, userID uint) (*models.ReferralCode, error) {
	var (
		rc models.ReferralCode
		ok bool
	)
	r.u.with(func(s *memState) { rc, ok = s.codes[userID] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &rc, nil
}

func (r memReferrals) GetCodeByCode(_ context.Context, code string) (*models.ReferralCode, error) {
	var out *models.ReferralCode
	r.u.with(func(s *memState) {
		for _, rc := range s.codes {
			if strings.EqualFold(rc.Code, code) {
				out = &rc
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrRecordNotFound
	}
	return out, nil
}

func (r memReferrals) CreateCode(ctx context.Context, rc *models.ReferralCode) error {
	if _, err := r.GetCodeByCode(ctx, rc.Code); err == nil {
		return domain.ErrDuplicateKey
	}
	r.u.with(func(s *memState) {
		rc.ID = s.id()
		s.codes[rc.UserID] = *rc
	})
	return nil
}

func (r memReferrals) UpdateCode(_ context.Context, rc *models.ReferralCode) error {
	r.u.with(func(s *memState) { s.codes[rc.UserID] = *rc })
	return nil
}

func (r memReferrals) CreateReferral(_ context.Context, ref *models.Referral) error {
	r.u.with(func(s *memState) {
		ref.ID = s.id()
		s.referrals[ref.ID] = *ref
	})
	return nil
}

func (r memReferrals) GetByReferredUser(_ context.Context, userID uint) (*models.Referral, error) {
	var out *models.Referral
	r.u.with(func(s *memState) {
		for _, ref := range s.referrals {
			if ref.ReferredUserID == userID {
				out = &ref
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrRecordNotFound
	}
	return out, nil
}

func (r memReferrals) AddEarnings(_ context.Context, referralID uint, currency string, amount decimal.Decimal) error {
	r.u.with(func(s *memState) {
		ref := s.referrals[referralID]
		if currency == domain.CurrencyUSDT {
			ref.EarnedUSDT = ref.EarnedUSDT.Add(amount)
		} else {
			ref.EarnedINR = ref.EarnedINR.Add(amount)
		}
		ref.PurchaseCount++
		s.referrals[referralID] = ref
	})
	return nil
}

func (r memReferrals) CreateCommission(_ context.Context, c *models.Commission) error {
	r.u.with(func(s *memState) {
		c.ID = s.id()
		s.commissions = append(s.commissions, *c)
	})
	return nil
}

func (r memReferrals) ListByReferrer(_ context.Context, referrerID uint, _, _ int) ([]models.Referral, int64, error) {
	var out []models.Referral
	r.u.with(func(s *memState) {
		for _, ref := range s.referrals {
			if ref.ReferrerID == referrerID {
				out = append(out, ref)
			}
		}
	})
	return out, int64(len(out)), nil
}

func (r memReferrals) Stats(_ context.Context, referrerID uint) (*models.ReferralStats, error) {
	st := &models.ReferralStats{}
	r.u.with(func(s *memState) {
		for _, ref := range s.referrals {
			if ref.ReferrerID == referrerID {
				st.Invited++
			}
		}
	})
	return st, nil
}

// Affiliates

type memAffiliates memStore

func (r memAffiliates) Create(_ context.Context, a *models.AffiliateApplication) error {
	r.u.with(func(s *memState) {
		a.ID = s.id()
		s.affiliates[a.ID] = *a
	})
	return nil
}

func (r memAffiliates) Save(_ context.Context, a *models.AffiliateApplication) error {
	r.u.with(func(s *memState) { s.affiliates[a.ID] = *a })
	return nil
}

func (r memAffiliates) GetByID(_ context.Context, id uint) (*models.AffiliateApplication, error) {
	var (
		a  models.AffiliateApplication
		ok bool
	)
	r.u.with(func(s *memState) { a, ok = s.affiliates[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &a, nil
}

func (r memAffiliates) GetForUpdate(ctx context.Context, id uint) (*models.AffiliateApplication, error) {
	r.u.lock(fmt.Sprintf("affiliate:%d", id))
	return r.GetByID(ctx, id)
}

func (r memAffiliates) GetByUser(_ context.Context, userID uint) (*models.AffiliateApplication, error) {
	var out *models.AffiliateApplication
	r.u.with(func(s *memState) {
		for _, a := range s.affiliates {
			if a.UserID == userID {
				out = &a
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrRecordNotFound
	}
	return out, nil
}

func (r memAffiliates) ListDueForApproval(_ context.Context, now time.Time, limit int) ([]models.AffiliateApplication, error) {
	var out []models.AffiliateApplication
	r.u.with(func(s *memState) {
		for _, a := range s.affiliates {
			if a.Status == domain.AffiliateContactCollected && a.AutoApproveAt != nil && !a.AutoApproveAt.After(now) {
				out = append(out, a)
			}
		}
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Applicants

type memApplicants memStore

func (r memApplicants) Create(_ context.Context, a *models.Applicant) error {
	r.u.with(func(s *memState) {
		a.ID = s.id()
		s.applicants[a.ID] = *a
	})
	return nil
}

func (r memApplicants) Save(_ context.Context, a *models.Applicant) error {
	r.u.with(func(s *memState) { s.applicants[a.ID] = *a })
	return nil
}

func (r memApplicants) GetByID(_ context.Context, id uint) (*models.Applicant, error) {
	var (
		a  models.Applicant
		ok bool
	)
	r.u.with(func(s *memState) { a, ok = s.applicants[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &a, nil
}

func (r memApplicants) GetForUpdate(ctx context.Context, id uint) (*models.Applicant, error) {
	r.u.lock(fmt.Sprintf("applicant:%d", id))
	return r.GetByID(ctx, id)
}

func (r memApplicants) ListByUser(_ context.Context, userID uint) ([]models.Applicant, error) {
	var out []models.Applicant
	r.u.with(func(s *memState) {
		for _, a := range s.applicants {
			if a.UserID == userID {
				out = append(out, a)
			}
		}
	})
	return out, nil
}

// Deposits

type memDeposits memStore

func (r memDeposits) Create(_ context.Context, d *models.Deposit) error {
	r.u.with(func(s *memState) {
		d.ID = s.id()
		s.deposits[d.ID] = *d
	})
	return nil
}

func (r memDeposits) Save(_ context.Context, d *models.Deposit) error {
	r.u.with(func(s *memState) { s.deposits[d.ID] = *d })
	return nil
}

func (r memDeposits) GetForUpdate(_ context.Context, id uint) (*models.Deposit, error) {
	var (
		d  models.Deposit
		ok bool
	)
	r.u.with(func(s *memState) { d, ok = s.deposits[id] })
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &d, nil
}

func (r memDeposits) List(_ context.Context, userID uint, status string, _, _ int) ([]models.Deposit, int64, error) {
	var out []models.Deposit
	r.u.with(func(s *memState) {
		for _, d := range s.deposits {
			if (userID == 0 || d.UserID == userID) && (status == "" || d.Status == status) {
				out = append(out, d)
			}
		}
	})
	return out, int64(len(out)), nil
}

// Settings

type memSettings memStore

func (r memSettings) Get(_ context.Context, key string) (string, error) {
	var (
		v  string
		ok bool
	)
	r.u.with(func(s *memState) { v, ok = s.settings[key] })
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return v, nil
}

func (r memSettings) Set(_ context.Context, key, value string, _ *uint) error {
	r.u.with(func(s *memState) { s.settings[key] = value })
	return nil
}

func (r memSettings) GetAll(_ context.Context) ([]models.SystemSetting, error) {
	var out []models.SystemSetting
	r.u.with(func(s *memState) {
		for k, v := range s.settings {
			out = append(out, models.SystemSetting{Key: k, Value: v})
		}
	})
	return out, nil
}

// Audit

type memAudit memStore

func (r memAudit) Create(_ context.Context, l *models.AuditLog) error {
	r.u.with(func(s *memState) {
		l.ID = s.id()
		s.audit = append(s.audit, *l)
	})
	return nil
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(_ uint, eventType string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) PublishAdmins(eventType string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "admin:"+eventType)
}

func (r *recorder) has(eventType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, eventType)
}
