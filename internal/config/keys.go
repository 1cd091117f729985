package config

import (
	"fmt"
	"strconv"

	"github.com/phpvm/phpvm/internal/phpver"
)

// Keys lists the recognized option names in display order.
func Keys() []string {
	return []string{
		"auto_restart",
		"backup_enabled",
		"default_version",
		"max_backups",
		"cache_dir",
		"auto_switch",
	}
}

// UnknownKeyError represents a reference to an option that does not exist.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown config key: %s", e.Key)
}

// Get returns the display value of a single option.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "auto_restart":
		return strconv.FormatBool(s.AutoRestart), nil
	case "backup_enabled":
		return strconv.FormatBool(s.BackupEnabled), nil
	case "default_version":
		return s.DefaultVersion.String(), nil
	case "max_backups":
		return strconv.Itoa(s.MaxBackups), nil
	case "cache_dir":
		return s.CacheDir, nil
	case "auto_switch":
		return strconv.FormatBool(s.AutoSwitch), nil
	}
	return "", &UnknownKeyError{Key: key}
}

// Set parses a raw string value into the named option and validates the
// result.
func (s *Settings) Set(key, raw string) error {
	switch key {
	case "auto_restart", "backup_enabled", "auto_switch":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return &ValidationError{Field: key, Message: fmt.Sprintf("not a boolean: %s", raw)}
		}
		switch key {
		case "auto_restart":
			s.AutoRestart = b
		case "backup_enabled":
			s.BackupEnabled = b
		case "auto_switch":
			s.AutoSwitch = b
		}
	case "max_backups":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &ValidationError{Field: key, Message: fmt.Sprintf("not a number: %s", raw)}
		}
		s.MaxBackups = n
	case "default_version":
		if raw == "" {
			s.DefaultVersion = ""
			break
		}
		id, err := phpver.Normalize(raw, nil)
		if err != nil {
			return &ValidationError{Field: key, Message: err.Error()}
		}
		s.DefaultVersion = id
	case "cache_dir":
		s.CacheDir = raw
	default:
		return &UnknownKeyError{Key: key}
	}
	return s.Validate()
}
