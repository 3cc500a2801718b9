package shstate

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/nnikolash/go-shstate/access"
	"github.com/pkg/errors"
)

// SignalScope tells where an action binding delivers StateChanged.
type SignalScope int

const (
	// ScopeTarget delivers to the window owning the widget which fired.
	ScopeTarget SignalScope = iota
	// ScopeMain delivers to the main window.
	ScopeMain
)

func (sc SignalScope) String() string {
	switch sc {
	case ScopeTarget:
		return "target"
	case ScopeMain:
		return "main"
	default:
		return "unknown"
	}
}

func (sc SignalScope) MarshalText() ([]byte, error) {
	if sc != ScopeTarget && sc != ScopeMain {
		return nil, errors.Errorf("unknown signal scope %d", int(sc))
	}
	return []byte(sc.String()), nil
}

func (sc *SignalScope) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "target":
		*sc = ScopeTarget
	case "main":
		*sc = ScopeMain
	default:
		return errors.Errorf("unknown signal scope %q", string(text))
	}
	return nil
}

// Config is the declarative form of store options.
type Config struct {
	Discipline   access.Discipline `mapstructure:"discipline"`
	ActionSignal SignalScope       `mapstructure:"action_signal"`
}

func DefaultConfig() Config {
	return Config{
		Discipline:   access.Exclusive,
		ActionSignal: ScopeTarget,
	}
}

// ConfigDecodeHook lets mapstructure decode Config fields from strings.
func ConfigDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.TextUnmarshallerHookFunc()
}

// DecodeConfig decodes raw settings, e.g. from a config file, over the defaults.
func DecodeConfig(raw map[string]any) (Config, error) {
	cfg := DefaultConfig()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  ConfigDecodeHook(),
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to create config decoder")
	}

	if err := dec.Decode(raw); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode store config")
	}

	return cfg, nil
}
