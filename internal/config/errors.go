package config

import "errors"

var (
	ErrRedisAddrMissing = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB   = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidTimezone  = errors.New("REFERENCE_TIMEZONE must be a valid IANA timezone name")
)
