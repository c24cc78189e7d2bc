// Package task holds the task model, the in-memory collection, and the
// store that persists the collection as JSON in a key-value blob store.
//
// The persisted value is a JSON array stored under a single key
// (default "@tasks"):
//
//	[
//	  {"id": "5f0c...", "text": "Buy milk"},
//	  {"id": "9a1e...", "text": "Call mom", "deadline": 1717250400000}
//	]
//
// deadline is Unix epoch milliseconds and may be omitted. There is no schema
// version; readers ignore unknown fields and treat anything that is not an
// array as an empty list.
//
// # Collection
//
// Collection is an immutable snapshot. Every operation returns a new
// Collection plus a flag telling whether the task list changed, so callers
// can decide when to persist. Selection changes never change the task list.
//
// # Validation
//
// Validate checks a raw blob against the embedded JSON Schema. Load never
// calls it: a corrupt blob loads as an empty list. It exists for diagnostics.
package task
