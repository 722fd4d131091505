// Package settings persists and shares calculator state.
//
// The persisted document is versioned JSON with stable snake_case keys:
//
//	{"version":1,"paper_size":"8x10","aspect_ratio":"3:2",...}
//
// [Decode] fills missing keys from the defaults, ignores unknown keys and
// rejects malformed or out-of-range documents with a coded error; callers
// treat a rejected document as "nothing persisted". Decode(Encode(p)) == p
// for every [Persistable] a calculator can reach.
//
// Share tokens wrap a [SharedPreset] in URL-safe base64 with a version byte
// and a BLAKE2b checksum, so a tampered or truncated token fails closed. The
// ID travels as raw bytes and only non-default settings are carried.
//
// [Persister] writes the latest state to a [store.Store] after a quiet
// period, coalescing bursts of edits into one write.
package settings
