package db

import "errors"

// Connection errors.
var (
	ErrEmptyConnectionURL       = errors.New("db: connection url is empty")
	ErrFailedToParseDBConfig    = errors.New("db: invalid connection url")
	ErrFailedToOpenDBConnection = errors.New("db: cannot reach the log database")
	ErrHealthcheckFailed        = errors.New("db: log database is unhealthy")
)

// Schema and write errors.
var (
	ErrSetDialect      = errors.New("db: cannot select the migration dialect")
	ErrApplyMigrations = errors.New("db: log table migration failed")
	ErrBeginTx         = errors.New("db: cannot start a batch transaction")
	ErrCommitTx        = errors.New("db: cannot commit a batch transaction")
)
