// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the native scheduler daemon with
// call timeouts. The client satisfies the engine's native scheduler
// capability.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
