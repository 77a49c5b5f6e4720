// Package alarm contains the record kept by the native scheduler daemon for
// every alarm it has been asked to fire.
package alarm
