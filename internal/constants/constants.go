package constants

import "time"

const (
	DatabaseTimeout   = 5 * time.Second
	RequestTimeout    = 30 * time.Second
	HostBridgeTimeout = 5 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxRequestBodyBytes = 1 << 20
)

// Achievement names awarded by the ledger.
const (
	AchievementFirstKill    = "first_kill"
	AchievementPlayerSlayer = "player_slayer"
	AchievementBestFriend   = "best_friend"
	AchievementElder        = "elder"
	AchievementTamed        = "tamed"

	ElderAgeSeconds = 3600
)
