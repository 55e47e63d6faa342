// Package api holds the JSON wire types shared by the daemon's HTTP server
// and the CLI, plus conversions from the corpus model.
package api
