// Package proxy holds the request and response model of the chat endpoint.
//
// A chat request is a JSON object with an optional prompt field. The reply
// is always {"result": string}: HTTP 200 with the extracted completion text,
// or HTTP 500 with a readable error message.
//
// # Extraction
//
// Extract derives display text from an upstream completion payload. It tries
// output.choices[0].message.content and then output.text, each trimmed and
// accepted only when non-empty. Failing both it returns the payload as
// compact JSON, so a caller always has something to show.
//
//	payload, _ := jsonvalue.Parse(body)
//	text, source := proxy.ExtractWithSource(payload)
//
// # Errors
//
// ErrorMessage turns any failure into the message placed in result. It
// prefers the upstream error envelope (error.message, then message) over the
// Go error text, and falls back to "Unknown error".
//
// The HTTP handler lives in pkg/proxy/handlers and the middleware chain in
// pkg/proxy/middleware.
package proxy
