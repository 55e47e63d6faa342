// Command auricle is the operator CLI for the content pipeline. It manages
// feeds and items in the local corpus, runs individual pipeline stages on
// demand, and reports corpus statistics. Long-running scheduled processing
// is handled by the auricled daemon.
package main
