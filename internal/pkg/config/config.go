package config

import (
	"io"
	"time"
)

// Config is the read side of the application configuration.
//
// Getters never fail: a missing key or a value that cannot be converted
// yields the zero value of the requested type.
type Config interface {
	io.Closer

	// GetBool returns the value for key as a bool.
	GetBool(key string) bool
	// GetString returns the value for key as a string.
	GetString(key string) string
	// GetInt returns the value for key as an int.
	GetInt(key string) int
	// GetInt32 returns the value for key as an int32.
	GetInt32(key string) int32
	// GetUint16 returns the value for key as a uint16.
	GetUint16(key string) uint16
	// GetFloat64 returns the value for key as a float64.
	GetFloat64(key string) float64

	// GetSecond reads an integer value and interprets it as seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer value and interprets it as minutes.
	GetMinute(key string) time.Duration

	// GetArray reads a comma separated value (<element1>,<element2>,...) or a
	// YAML sequence. Elements are trimmed and empty elements dropped.
	GetArray(key string) []string
}
