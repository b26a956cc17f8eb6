package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	CurrencyUSDT = "USDT"
	CurrencyINR  = "INR"
)

// Wallet purposes. Every user holds one wallet per purpose and currency.
const (
	PurposeMain     = "MAIN"
	PurposePurchase = "PURCHASE"
	PurposeMining   = "MINING"
)

var (
	Currencies = []string{CurrencyUSDT, CurrencyINR}
	Purposes   = []string{PurposeMain, PurposePurchase, PurposeMining}
)

// AmountPlaces is the number of decimal places kept for every amount.
const AmountPlaces int32 = 8

const (
	ItemProduct         = "PRODUCT"
	ItemDatabasePackage = "DATABASE_PACKAGE"
	ItemSoftware        = "SOFTWARE"
)

const (
	WalletTxPurchase   = "PURCHASE"
	WalletTxCommission = "COMMISSION"
	WalletTxTrustFee   = "TRUST_FEE"
	WalletTxDeposit    = "DEPOSIT"
	WalletTxAdjustment = "ADJUSTMENT"
	WalletTxTransfer   = "TRANSFER"
)

const (
	DeliveryProcessing = "PROCESSING"
	DeliveryDelivered  = "DELIVERED"
)

const (
	DepositPending  = "PENDING"
	DepositApproved = "APPROVED"
	DepositRejected = "REJECTED"
)

const (
	AffiliateNotApplied       = "NOT_APPLIED"
	AffiliatePending          = "PENDING"
	AffiliateReviewed         = "REVIEWED"
	AffiliateTrustFeePending  = "TRUST_FEE_PENDING"
	AffiliatePaid             = "PAID"
	AffiliateContactCollected = "CONTACT_COLLECTED"
	AffiliateApproved         = "APPROVED"
	AffiliateRejected         = "REJECTED"
)

const (
	ApplicantPending     = "PENDING"
	ApplicantReviewed    = "REVIEWED"
	ApplicantShortlisted = "SHORTLISTED"
	ApplicantApproved    = "APPROVED"
	ApplicantAccepted    = "ACCEPTED"
	ApplicantRejected    = "REJECTED"
)

const (
	TrustFeeNotRequired = "NOT_REQUIRED"
	TrustFeePending     = "PENDING"
	TrustFeePaid        = "PAID"
	TrustFeeCollected   = "COLLECTED"
)

// Admin-editable settings.
const (
	SettingAffiliateTrustFeeUSDT = "affiliate_trust_fee_usdt"
	SettingApplicantTrustFeeUSDT = "applicant_trust_fee_usdt"
	SettingCommissionsEnabled    = "commissions_enabled"
)

var DefaultSettings = map[string]string{
	SettingAffiliateTrustFeeUSDT: "10",
	SettingApplicantTrustFeeUSDT: "25",
	SettingCommissionsEnabled:    "true",
}

const (
	ReferralEditCooldown = 7 * 24 * time.Hour
	AutoApproveMinDelay  = 8 * time.Minute
	AutoApproveMaxDelay  = 30 * time.Minute
)

// Live event types pushed over /ws/live.
const (
	EventWalletUpdated    = "wallet.updated"
	EventOrderCreated     = "order.created"
	EventOrderDelivered   = "order.delivered"
	EventCommissionEarned = "commission.earned"
	EventAffiliateStatus  = "affiliate.status"
	EventApplicantStatus  = "applicant.status"
	EventDepositStatus    = "deposit.status"
	EventNotification     = "notification"
)

func IsCurrency(c string) bool {
	return c == CurrencyUSDT || c == CurrencyINR
}

func IsPurpose(p string) bool {
	return p == PurposeMain || p == PurposePurchase || p == PurposeMining
}
