// Package daemon runs the content pipeline as a long-lived process: it wires
// the stages, drives them on the scheduler, serves the HTTP API, and uses a
// file lock to guarantee a single active instance per log directory.
package daemon
