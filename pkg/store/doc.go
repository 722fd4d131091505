// Package store provides durable key/value backends for persisted
// calculator state.
//
// A [Store] holds opaque byte payloads (the settings codec decides what they
// mean). Three backends are provided:
//
//   - [FileStore]: one JSON envelope per key under a directory, the default
//     for the CLI and TUI.
//   - [RedisStore]: a shared Redis instance, for the HTTP server or several
//     machines sharing one state.
//   - [NullStore]: stores nothing; persistence disabled.
//
// Load reports a missing key as (nil, false, nil), never as an error, so
// callers can fall back to defaults without inspecting error codes.
package store
