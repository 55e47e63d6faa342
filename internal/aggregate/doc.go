// Package aggregate merges recently enriched items that share a tag into
// synthesized digest items. Each tag yields at most one digest per run; a
// failed tag never blocks the others, and contributors advance past
// "enriched" only when at least one of their digests succeeded.
package aggregate
