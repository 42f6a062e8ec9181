// Package models defines the core domain models for Patungan.
//
// # Aggregates
//
//   - Bill: a named bill owned by one identity. Three kinds exist:
//     even (one total split equally), itemized (shared items, surcharges
//     proportional to consumption) and per_person (owned items, surcharges
//     split equally per head).
//   - Note: a freeform note with a dense display rank.
//   - ChatMessage: one turn of the assistant transcript.
//
// Derived values such as PersonSummary are computed by the calculator package
// and never persisted.
//
// # Design Principles
//
//  1. A bill exclusively owns its participants and items
//  2. Items reference participants by ID; removing a participant unassigns it
//     from every item and never deletes an item
//  3. Identity is self-asserted and only partitions data, it is not a security boundary
//  4. Surcharge overrides are parsed once at the input boundary into a tagged value
package models
