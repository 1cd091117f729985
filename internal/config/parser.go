package config

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/phpvm/phpvm/internal/phpver"
)

// ParseError represents a failure to parse a settings file.
type ParseError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse config: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Load reads and parses a settings file. A missing file yields the
// defaults, not an error; first runs have no config yet.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Settings{}, &ParseError{Path: path, Message: "cannot read file", Cause: err}
	}
	s, err := Parse(string(data))
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return Settings{}, err
	}
	return s, nil
}

// Parse evaluates Lua settings source in a sandboxed VM and extracts the
// phpvm table. Unknown keys are ignored so configs survive downgrades.
func Parse(source string) (Settings, error) {
	L := newSandboxedVM()
	defer L.Close()

	if err := L.DoString(source); err != nil {
		return Settings{}, &ParseError{Message: "lua evaluation failed", Cause: err}
	}

	root := L.GetGlobal("phpvm")
	tbl, ok := root.(*lua.LTable)
	if !ok {
		if root == lua.LNil {
			return Settings{}, &ParseError{Message: "missing phpvm table"}
		}
		return Settings{}, &ParseError{Message: fmt.Sprintf("phpvm must be a table, got %s", root.Type())}
	}

	s := Defaults()
	var extractErr error

	tbl.ForEach(func(key, value lua.LValue) {
		if extractErr != nil {
			return
		}
		name, ok := key.(lua.LString)
		if !ok {
			return
		}
		if err := assign(&s, string(name), value); err != nil {
			extractErr = err
		}
	})
	if extractErr != nil {
		return Settings{}, extractErr
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func assign(s *Settings, key string, value lua.LValue) error {
	switch key {
	case "auto_restart":
		b, err := asBool(key, value)
		if err != nil {
			return err
		}
		s.AutoRestart = b
	case "backup_enabled":
		b, err := asBool(key, value)
		if err != nil {
			return err
		}
		s.BackupEnabled = b
	case "auto_switch":
		b, err := asBool(key, value)
		if err != nil {
			return err
		}
		s.AutoSwitch = b
	case "max_backups":
		n, ok := value.(lua.LNumber)
		if !ok {
			return &ParseError{Message: fmt.Sprintf("max_backups must be a number, got %s", value.Type())}
		}
		s.MaxBackups = int(n)
	case "default_version":
		str, ok := value.(lua.LString)
		if !ok {
			return &ParseError{Message: fmt.Sprintf("default_version must be a string, got %s", value.Type())}
		}
		id, err := phpver.Normalize(string(str), nil)
		if err != nil {
			return &ParseError{Message: fmt.Sprintf("default_version: %v", err), Cause: err}
		}
		s.DefaultVersion = id
	case "cache_dir":
		str, ok := value.(lua.LString)
		if !ok {
			return &ParseError{Message: fmt.Sprintf("cache_dir must be a string, got %s", value.Type())}
		}
		s.CacheDir = string(str)
	}
	return nil
}

func asBool(key string, value lua.LValue) (bool, error) {
	b, ok := value.(lua.LBool)
	if !ok {
		return false, &ParseError{Message: fmt.Sprintf("%s must be a boolean, got %s", key, value.Type())}
	}
	return bool(b), nil
}
