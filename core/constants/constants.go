package constants

import "time"

// Database
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
)

// Context keys
const (
	ContextCustomerID = "customer_id"
	ContextRole       = "role"
	RoleAdmin         = "admin"
)

// Booking input bounds
const (
	MinPartySize        = 1
	MaxPartySizeInput   = 20
	MinRequestedTables  = 1
	MaxRequestedTables  = 4
	CombinedSearchAbove = 8
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04"
)

// Risk score points
const (
	PointsDailyLimitExceeded = 30
	PointsDailyLimitNear     = 10
	PointsTableLimitExceeded = 25
	PointsPartyOverHardCap   = 40
	PointsLargeParty         = 15
	PointsPaymentPattern     = 20
	PointsPerExcessAttempt   = 15
	PointsPerRiskFlag        = 10

	LargePartyThreshold        = 15
	ExcessAttemptOverrideBelow = 3

	BaseTablesPerCustomer = 2
	VIPTablesPerCustomer  = 3

	RiskScoreMin     = 0
	RiskScoreMax     = 100
	RiskMediumFrom   = 25
	RiskHighFrom     = 50
	RiskVeryHighFrom = 75
)

// Waitlist priority
const (
	TierWeightNone     = 0
	TierWeightSilver   = 10
	TierWeightGold     = 20
	TierWeightPlatinum = 30

	WaitPointEvery    = 10 * time.Minute
	WaitPointsCap     = 48
	RankWeight        = 5
	MaxRank           = 10
	TimeMatchMaxBonus = 20
	FloorMatchBonus   = 10
)

// Notification
const (
	NotificationMaxAttempts = 3
	NotificationBaseBackoff = 2 * time.Second
	NotificationSentTTL     = 24 * time.Hour
	TaskTypeWaitlistNotify  = "waitlist:notify"
	QueueNotifications      = "notifications"
)

// Cache keys
const (
	PaymentFingerprintPrefix = "risk:payment:"
	NotificationSentPrefix   = "notify:sent:"
)
