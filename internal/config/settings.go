package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting looked up in the environment (QCTX_HOME, ...)
const EnvPrefix = "QCTX"

// setting keys
const (
	KeyHome           = "home"
	KeyDebug          = "debug"
	KeyNoClipboard    = "no-clipboard"
	KeyNoSave         = "no-save"
	KeyMaxLines       = "max-lines"
	KeySkipUnreadable = "skip-unreadable"
	KeyStrict         = "strict"
)

// Settings controls how a single invocation behaves.
// Unlike Config it is never persisted.
type Settings struct {
	Home           string
	Debug          bool
	NoClipboard    bool
	NoSave         bool
	MaxLines       int // overrides every context budget when positive
	SkipUnreadable bool
	Strict         bool
}

// NewSettingsViper returns a viper instance with qctx defaults and environment bindings
func NewSettingsViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyHome, "")
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyNoClipboard, false)
	v.SetDefault(KeyNoSave, false)
	v.SetDefault(KeyMaxLines, 0)
	v.SetDefault(KeySkipUnreadable, false)
	v.SetDefault(KeyStrict, false)

	// DEBUG=true is honoured alongside QCTX_DEBUG
	_ = v.BindEnv(KeyDebug, EnvPrefix+"_DEBUG", "DEBUG")

	return v
}

// BindFlags binds every flag in fs whose name is a setting key
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyHome, KeyDebug, KeyNoClipboard, KeyNoSave, KeyMaxLines, KeySkipUnreadable, KeyStrict} {
		flag := fs.Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// LoadSettings reads the effective settings from v, filling in the home directory
func LoadSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		Home:           v.GetString(KeyHome),
		Debug:          v.GetBool(KeyDebug),
		NoClipboard:    v.GetBool(KeyNoClipboard),
		NoSave:         v.GetBool(KeyNoSave),
		MaxLines:       v.GetInt(KeyMaxLines),
		SkipUnreadable: v.GetBool(KeySkipUnreadable),
		Strict:         v.GetBool(KeyStrict),
	}

	if s.Home == "" {
		home, err := DefaultHome()
		if err != nil {
			return s, err
		}
		s.Home = home
	}
	return s, nil
}

// DefaultHome returns ~/.qctx
func DefaultHome() (string, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(userHome, ".qctx"), nil
}
