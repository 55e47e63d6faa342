// Package fetch downloads pending item URLs and extracts their readable
// article text. Successful items become active at stage "fetched"; items
// that exhaust their retry budget move to the terminal "failed" stage.
package fetch
