// Package question implements the closed union of quiz question variants
// and the reconciler that derives a record's variant from its shape.
//
// Four variants exist and no others can be added from outside the package:
// Boolean, Select, Sequence and Matching. Each owns one or two locally
// scoped collections plus a solution reference into them. Every operation
// that changes a collection renumbers it and remaps the solution in the same
// step, so a returned variant always satisfies:
//
//   - ids in each collection are unique and contiguous in display order
//     ("1","2",... for options and items, "L1".. / "R1".. for columns)
//   - every solution reference resolves
//
// Record is the flat persisted form. Reconcile inspects which fields of a
// Record are populated and fixes a stale kind tag; FromRecord reconciles,
// repairs what can be repaired, and reports the rest as fault.Issue values.
package question
