// Package llm is the gateway to an OpenAI-compatible chat completion
// endpoint. Calls return a uniform Result rather than an error so pipeline
// stages branch the same way on transport failures, HTTP failures, and empty
// model output. Transient statuses (408, 413, 429, 5xx) and transport
// timeouts are retried with exponential backoff.
package llm
