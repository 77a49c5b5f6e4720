package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/activity-alarms/internal/logger"
)

// Config holds settings shared by the alarm engine and the native scheduler daemon.
type Config struct {
	// LogLevel is the minimum level for log output (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// ActivitiesFile is the YAML file the engine reads activities from.
	ActivitiesFile string `yaml:"activities_file"`
	// ReloadDelay is how long the activities file must stay quiet after a
	// change before it is reloaded.
	ReloadDelay time.Duration `yaml:"reload_delay"`
	// Engine tunes the alarm scheduling engine.
	Engine Engine `yaml:"engine"`
	// Scheduler describes the native scheduler daemon and how to reach it.
	Scheduler Scheduler `yaml:"scheduler"`
	// Feedback selects how an active alarm is rendered.
	Feedback Feedback `yaml:"feedback"`
}

// Engine holds the scheduling policy knobs.
type Engine struct {
	// Horizon is the longest delay the software timer path accepts.
	Horizon time.Duration `yaml:"horizon"`
	// SnoozeInterval is how far into the future a snoozed alarm is re-armed.
	SnoozeInterval time.Duration `yaml:"snooze_interval"`
	// PlatformName overrides the detected platform name.
	PlatformName string `yaml:"platform_name"`
	// PlatformVersion is the numeric platform version used by the permission policy.
	PlatformVersion int `yaml:"platform_version"`
	// PermissionMinVersion is the lowest platform version that needs a notification permission.
	PermissionMinVersion int `yaml:"permission_min_version"`
	// NativeEnabled allows delegation to the native scheduler daemon.
	NativeEnabled bool `yaml:"native_enabled"`
	// NativePlatform is the platform name on which native delegation is supported.
	NativePlatform string `yaml:"native_platform"`
	// NativeProcess is the daemon process name probed before dialing it.
	NativeProcess string `yaml:"native_process"`
	// NativeTimeout bounds each call the engine makes to the daemon.
	NativeTimeout time.Duration `yaml:"native_timeout"`
}

// Scheduler holds the native scheduler daemon settings.
type Scheduler struct {
	// Address is the gRPC address of the daemon.
	Address string `yaml:"address"`
	// Store selects the persistence backend: "file" or "sqlite".
	Store string `yaml:"store"`
	// StateFile is the path of the file or database holding scheduled alarms.
	StateFile string `yaml:"state_file"`
	// Notifier shows fired alarms: "desktop", "command" or "log".
	Notifier string `yaml:"notifier"`
	// NotifyCommand is executed with the alarm title and body by the command notifier.
	NotifyCommand string `yaml:"notify_command"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
}

// Feedback holds presentation settings.
type Feedback struct {
	// Sound is one of "tone", "bell" or "none".
	Sound string `yaml:"sound"`
	// ToneHz is the pitch of the generated alarm tone.
	ToneHz float64 `yaml:"tone_hz"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "activity-alarms.yaml"

	// DefaultActivitiesFilename is the default activities file.
	DefaultActivitiesFilename = "activities.yaml"

	// DefaultStateFilename is the default file for native scheduler state.
	DefaultStateFilename = "alarm-scheduler-state.json"

	// DefaultSchedulerAddress is where the native scheduler daemon listens by default.
	DefaultSchedulerAddress = "127.0.0.1:50071"

	// DefaultNativeProcess is the daemon process name.
	DefaultNativeProcess = "alarm-scheduler"

	// DefaultReloadDelay lets a burst of file events settle before reloading.
	DefaultReloadDelay = 250 * time.Millisecond

	// DefaultNativeTimeout bounds how long the engine waits on the daemon.
	DefaultNativeTimeout = time.Second

	// DefaultHorizon is the software timer look-ahead window.
	DefaultHorizon = 7 * 24 * time.Hour

	// DefaultSnoozeInterval is the fixed snooze delay.
	DefaultSnoozeInterval = 5 * time.Minute

	// DefaultPermissionMinVersion is the first platform version requiring a notification permission.
	DefaultPermissionMinVersion = 33

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultToneHz is the default alarm tone pitch.
	DefaultToneHz = 880

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Notifier kinds.
const (
	NotifierDesktop = "desktop"
	NotifierCommand = "command"
	NotifierLog     = "log"
)

// Sound kinds.
const (
	SoundTone = "tone"
	SoundBell = "bell"
	SoundNone = "none"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStore is returned for an unsupported store kind.
	errUnknownStore = errors.New("unknown scheduler store")
	// errUnknownNotifier is returned for an unsupported notifier kind.
	errUnknownNotifier = errors.New("unknown scheduler notifier")
	// errNoNotifyCommand is returned when the command notifier has no command.
	errNoNotifyCommand = errors.New("scheduler.notify_command is required for the command notifier")
	// errUnknownSound is returned for an unsupported sound kind.
	errUnknownSound = errors.New("unknown feedback sound")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeDuration is returned when a duration setting is negative.
	errNegativeDuration = errors.New("duration must not be negative")
	// errHorizonBelowSnooze is returned when a snoozed alarm could never be re-armed.
	errHorizonBelowSnooze = errors.New("engine.horizon is shorter than engine.snooze_interval")
)

// Default returns a configuration populated with default values.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg) //nolint:errcheck // Empty config only receives defaults.

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path yields the default configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for unset fields.
//
//nolint:cyclop // Flat list of independent defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.ActivitiesFile == "" {
		cfg.ActivitiesFile = DefaultActivitiesFilename
	}

	for name, d := range map[string]time.Duration{
		"reload_delay":           cfg.ReloadDelay,
		"engine.horizon":         cfg.Engine.Horizon,
		"engine.snooze_interval": cfg.Engine.SnoozeInterval,
		"engine.native_timeout":  cfg.Engine.NativeTimeout,
		"scheduler.timeout":      cfg.Scheduler.Timeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s: %w", name, errNegativeDuration)
		}
	}

	if cfg.ReloadDelay == 0 {
		cfg.ReloadDelay = DefaultReloadDelay
	}

	if err := validateEngine(&cfg.Engine); err != nil {
		return err
	}

	if err := validateScheduler(&cfg.Scheduler); err != nil {
		return err
	}

	return validateFeedback(&cfg.Feedback)
}

// validateEngine fills in engine defaults and checks the snooze interval fits
// inside the horizon.
func validateEngine(e *Engine) error {
	if e.Horizon == 0 {
		e.Horizon = DefaultHorizon
	}

	if e.SnoozeInterval == 0 {
		e.SnoozeInterval = DefaultSnoozeInterval
	}

	if e.PlatformName == "" {
		e.PlatformName = runtime.GOOS
	}

	if e.PermissionMinVersion == 0 {
		e.PermissionMinVersion = DefaultPermissionMinVersion
	}

	if e.NativePlatform == "" {
		e.NativePlatform = runtime.GOOS
	}

	if e.NativeProcess == "" {
		e.NativeProcess = DefaultNativeProcess
	}

	if e.NativeTimeout == 0 {
		e.NativeTimeout = DefaultNativeTimeout
	}

	if e.Horizon < e.SnoozeInterval {
		return fmt.Errorf("%w: %s < %s", errHorizonBelowSnooze, e.Horizon, e.SnoozeInterval)
	}

	return nil
}

// validateScheduler fills in daemon defaults and checks the address, store
// and notifier.
//
//nolint:cyclop // Flat list of independent defaults.
func validateScheduler(s *Scheduler) error {
	if s.Address == "" {
		s.Address = DefaultSchedulerAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", s.Address); err != nil {
		return fmt.Errorf("invalid scheduler address: %w", err)
	}

	if s.Store == "" {
		s.Store = StoreFile
	}

	if s.Store != StoreFile && s.Store != StoreSQLite {
		return fmt.Errorf("%w: %q", errUnknownStore, s.Store)
	}

	if s.StateFile == "" {
		s.StateFile = DefaultStateFilename
	}

	if s.Notifier == "" {
		s.Notifier = NotifierDesktop
		if s.NotifyCommand != "" {
			s.Notifier = NotifierCommand
		}
	}

	switch s.Notifier {
	case NotifierDesktop, NotifierLog:
	case NotifierCommand:
		if s.NotifyCommand == "" {
			return errNoNotifyCommand
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownNotifier, s.Notifier)
	}

	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}

	return nil
}

// validateFeedback fills in presentation defaults.
func validateFeedback(f *Feedback) error {
	if f.Sound == "" {
		f.Sound = SoundBell
	}

	switch f.Sound {
	case SoundTone, SoundBell, SoundNone:
	default:
		return fmt.Errorf("%w: %q", errUnknownSound, f.Sound)
	}

	if f.ToneHz <= 0 {
		f.ToneHz = DefaultToneHz
	}

	return nil
}
