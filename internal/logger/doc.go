// Package logger wraps zap for the alarm binaries.
//
// A global sugared console logger writes to stderr. Components carry a named
// logger in their context (WithName, WithKV) and log through the level
// helpers, so every line names the engine, daemon or client that wrote it.
package logger
