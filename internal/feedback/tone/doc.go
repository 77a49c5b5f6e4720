// Package tone plays a looping beep through the system audio device.
package tone
