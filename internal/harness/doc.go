// Package harness runs YAML mutation scenarios against a fresh in-memory
// track and compares the outcome with golden documents.
//
// # Scenario Format
//
//	name: remove_option_renumbers
//	description: "Removing an option renumbers the rest and keeps correct answers"
//	id_prefix: n            # optional; generated ids are n-1, n-2, ...
//	seed:                   # a track document, stored as is
//	  id: t1
//	  name: Geography
//	  groups: [...]
//	steps:
//	  - op: remove_choice
//	    args: {group_id: g1, stage_id: s1, question_id: q1, collection: options, choice_id: "1"}
//	  - op: add_pair
//	    args: {...}
//	    expect_error: NOT_FOUND
//	assertions:
//	  - type: ids
//	    question: {group_id: g1, stage_id: s1, question_id: q1}
//	    collection: options
//	    expect: ["1", "2"]
//	  - type: correct
//	    question: {group_id: g1, stage_id: s1, question_id: q1}
//	    expect: ["1"]
//
// # Assertion Types
//
//   - ids: local ids of a choice collection, in display order
//   - correct: correct options, correct order, or "L:R" pairs, by kind
//   - kind: the question's variant tag
//   - version: the acknowledged track version after all steps
//   - issues: how many load issues the seed produced
//
// # Determinism
//
// The seed is stored without validation so drifted documents can be
// exercised. Steps go through session.Submit and the session's Run loop in
// order, with a sequence id generator, so the final document is identical
// on every run and can be compared byte for byte with a golden file.
package harness
