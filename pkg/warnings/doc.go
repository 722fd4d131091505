// Package warnings turns calculator inputs and solved geometry into
// human-readable advisories.
//
// Each category has one stateless check returning a message or nil. Evaluate
// runs all of them and returns a Set holding exactly one slot per category;
// a fresh evaluation replaces the previous Set wholesale, so stale messages
// never linger.
package warnings
