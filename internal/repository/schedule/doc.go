// Package schedule implements persistence for alarms held by the native
// scheduler daemon.
//
// FileRepository stores the alarms as protobuf JSON on disk; SQLiteRepository
// keeps them in a SQLite table. Both satisfy Repository.
package schedule
