// Package resolve discovers new corpus items from registered feeds. Each
// tick it selects feeds past their cooldown, parses RSS documents (or
// synthesizes a single entry for single-url feeds), and inserts entries not
// already present by URL. Resolution is idempotent; re-running against an
// unchanged feed inserts nothing.
package resolve
