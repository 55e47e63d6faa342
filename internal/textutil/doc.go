// Package textutil provides pure string helpers shared across the pipeline:
// locating the JSON object embedded in a model response, log-safe snippets,
// and tag list normalization.
package textutil
