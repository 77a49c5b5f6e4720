package scheduler

import "context"

// PermissionRequester asks the platform for permission to show notifications.
type PermissionRequester interface {
	RequestNotificationPermission(ctx context.Context) (bool, error)
}

// PermissionState is the outcome of the notification permission probe.
type PermissionState string

const (
	// PermissionUnknown means the probe has not finished or was never run.
	PermissionUnknown PermissionState = "unknown"
	// PermissionNotRequired means the platform version does not need one.
	PermissionNotRequired PermissionState = "not-required"
	// PermissionGranted means the platform allowed notifications.
	PermissionGranted PermissionState = "granted"
	// PermissionDenied means the request was refused or failed.
	PermissionDenied PermissionState = "denied"
)

// requestPermission runs the probe and posts its outcome to the engine loop.
// Scheduling goes on while it runs.
func (e *Engine) requestPermission(ctx context.Context) {
	granted, err := e.permission.RequestNotificationPermission(ctx)

	state := PermissionGranted
	if err != nil || !granted {
		state = PermissionDenied
	}

	e.post(func(ctx context.Context) {
		e.setPermission(ctx, state, err)
	})
}
