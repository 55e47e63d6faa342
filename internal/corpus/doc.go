// Package corpus persists feeds and items in SQLite and encodes the pipeline
// state machine.
//
// Items carry a monotonic stage marker (unset -> fetched -> enriched ->
// aggregated -> narrated) plus a terminal failed marker reached when a stage
// exhausts its retry budget. Every scheduled stage selects its work through
// the eligibility queries here rather than scanning items itself, so the
// predicates in this package are the single source of truth for "what runs
// next". Schema changes ship as embedded SQL migrations applied at Open.
package corpus
