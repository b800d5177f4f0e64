// Package models defines the value types shared by the tip calculator's
// interaction state, its RPC service and its console display.
//
// # Models
//
//   - Inputs: the three leaf values a user edits (bill text, slider
//     position, split count)
//   - Snapshot: one consistent instant of a session, inputs plus every
//     derived value
//   - Display: the formatted strings a screen shows for a Snapshot
//
// # Design Principles
//
//  1. Derived values are never stored independently of the inputs they
//     come from; a Snapshot is always produced by recomputation.
//  2. Snapshots are plain values and safe to hand to other goroutines.
//  3. Formatting lives here so every display surface renders the same text.
package models
