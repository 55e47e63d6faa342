// Package narrate synthesizes audio for recent digest items and records the
// public URL of each generated file. Only ai-aggregate items are narrated.
package narrate
