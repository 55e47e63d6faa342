// Package enrich sends fetched article text through the chat gateway and
// stores the narration-ready rewrite, a short abstract, and up to five topic
// tags on the item. Responses must be a JSON object with exactly those three
// fields; anything else leaves the item untouched for the next tick.
package enrich
