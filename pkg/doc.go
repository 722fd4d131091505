// Package pkg provides the core libraries for easel, a darkroom easel border
// calculator.
//
// # Overview
//
// Given a paper size, an image aspect ratio and a minimum border, easel works
// out the largest ratio-locked print that fits, centres it (or offsets it),
// and reports where to set the four blades of an enlarging easel. The pkg
// directory is organized into three areas:
//
//  1. Engine - [paper], [geometry] and [warnings] turn selections into blade
//     positions and advisory messages. They are pure and stateless.
//  2. State - [calculator] owns the document and its transitions; [settings]
//     encodes the persistable subset and share tokens.
//  3. Storage - [store] keeps the last calculator state, [preset] keeps named
//     presets.
//
// # Architecture
//
// The data flow for one transition:
//
//	Action (SetField, SetPaperSize, BatchUpdate, ...)
//	         ↓
//	    [calculator] Machine (apply, repair shadows, memoize)
//	         ↓
//	    [paper] Resolver (oriented paper + ratio)
//	         ↓
//	    [geometry] Solve (print size, blades, offset clamp)
//	         ↓
//	    [warnings] Evaluate (one message per category)
//	         ↓
//	    subscribers → [settings] Persister → [store]
//
// # Quick Start
//
//	m := calculator.New()
//	_ = m.Dispatch(calculator.SetPaperSize{Value: "11x14"})
//	_ = m.Dispatch(calculator.SetField{Field: calculator.FieldMinBorder, Value: 1.0})
//
//	g := m.Geometry()
//	fmt.Println(g.Readings().Left, g.Readings().Top)
//
// # Main Packages
//
// [paper] - Paper, ratio and easel tables plus the dimension resolver.
// Unknown selections fall back to 8x10 and 3:2.
//
// [geometry] - The solver. When a blade would land in the sliver between
// zero and the blade thickness, it searches upward in 1/16in steps for a
// border that can actually be set.
//
// [warnings] - Advisory messages for the minimum border, oversized custom
// paper, clamped offsets and unreachable blade positions.
//
// [calculator] - The state machine. Text fields keep whatever was typed;
// shadows keep the last valid number and drive the geometry.
//
// [settings] - Versioned JSON documents, URL-safe share tokens with a
// checksum, and the debounced persister.
//
// [store] - Key/value storage for the saved state: file, Redis or none.
//
// [preset] - Named preset collections on disk or in MongoDB, with YAML
// import and export.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for transitions, solves and persistence.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [paper]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/paper
// [geometry]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/geometry
// [warnings]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/warnings
// [calculator]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/calculator
// [settings]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/settings
// [store]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/store
// [preset]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/preset
// [errors]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/easel/pkg/observability
package pkg
