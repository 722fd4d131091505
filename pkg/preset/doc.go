// Package preset stores named calculator presets.
//
// A [Collection] is keyed by preset name; saving an existing name replaces
// its settings but keeps its ID. [FileCollection] keeps one JSON file per
// preset for the CLI, [MongoCollection] shares presets through MongoDB.
// [Export] and [Import] move presets between machines as YAML.
package preset
