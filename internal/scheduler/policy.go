package scheduler

import (
	"time"

	"github.com/oshokin/activity-alarms/internal/config"
)

// Platform describes the host the engine runs on.
type Platform struct {
	// Name is the platform identifier, e.g. "linux" or "android".
	Name string
	// Version is the numeric platform version.
	Version int
}

// Policy holds the tunable scheduling rules.
type Policy struct {
	// Horizon is the longest delay the software timer path accepts.
	Horizon time.Duration
	// SnoozeInterval is the delay applied by Snooze.
	SnoozeInterval time.Duration
	// NativePlatform is the only platform on which native delegation is used.
	NativePlatform string
	// PermissionMinVersion is the first platform version that needs a
	// notification permission.
	PermissionMinVersion int
	// NativeTimeout bounds every native scheduler call made on the engine
	// goroutine.
	NativeTimeout time.Duration
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Horizon:              config.DefaultHorizon,
		SnoozeInterval:       config.DefaultSnoozeInterval,
		PermissionMinVersion: config.DefaultPermissionMinVersion,
		NativeTimeout:        config.DefaultNativeTimeout,
	}
}

// PolicyFromConfig builds a policy and platform from validated engine settings.
func PolicyFromConfig(cfg *config.Engine) (Policy, Platform) {
	policy := Policy{
		Horizon:              cfg.Horizon,
		SnoozeInterval:       cfg.SnoozeInterval,
		NativePlatform:       cfg.NativePlatform,
		PermissionMinVersion: cfg.PermissionMinVersion,
		NativeTimeout:        cfg.NativeTimeout,
	}

	platform := Platform{
		Name:    cfg.PlatformName,
		Version: cfg.PlatformVersion,
	}

	return policy, platform
}

// normalize replaces unset values with defaults.
func (p Policy) normalize() Policy {
	defaults := DefaultPolicy()

	if p.Horizon <= 0 {
		p.Horizon = defaults.Horizon
	}

	if p.SnoozeInterval <= 0 {
		p.SnoozeInterval = defaults.SnoozeInterval
	}

	if p.PermissionMinVersion <= 0 {
		p.PermissionMinVersion = defaults.PermissionMinVersion
	}

	if p.NativeTimeout <= 0 {
		p.NativeTimeout = defaults.NativeTimeout
	}

	return p
}

// supportsNative reports whether native delegation is allowed on platform.
func (p Policy) supportsNative(platform Platform) bool {
	return p.NativePlatform != "" && p.NativePlatform == platform.Name
}

// requiresPermission reports whether platform must ask for a notification permission.
func (p Policy) requiresPermission(platform Platform) bool {
	return platform.Version >= p.PermissionMinVersion
}
