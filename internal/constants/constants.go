package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	DecayRunTimeout = 5 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	LeaderboardLimit   = 10
	HistoryLimit       = 5
	MatchIDDisplayLen  = 8
	TelegramPollPeriod = 60
)

const (
	ShutdownTimeout = 5 * time.Second
)
