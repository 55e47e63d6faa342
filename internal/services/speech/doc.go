// Package speech synthesizes narration audio through an HTTP text-to-speech
// endpoint. The voice catalog is fixed at build time; each token maps to a
// BCP-47 language tag so callers can reject unknown voices before any network
// traffic. Generated audio lands in the media directory and is addressed by
// a public static URL.
package speech
