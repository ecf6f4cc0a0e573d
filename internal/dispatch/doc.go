// Package dispatch routes one decoded message to exactly one handler.
//
// A Dispatcher is built once from a fixed routing table (identifier ->
// decode + apply) and is driven from a single goroutine. Unknown
// identifiers are ignored; malformed payloads are returned to the caller and
// never reach a handler.
package dispatch
