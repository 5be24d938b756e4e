// Package handlers implements the HTTP handler for the chat endpoint.
//
// ChatHandler accepts POST /api/chat with a JSON object body, forwards the
// prompt to the completion upstream and answers with {"result": "..."}.
// The status is 200 when the upstream answered and the reply was extracted,
// and 500 for every failure. A failure never escapes the handler: request
// decoding errors, upstream errors and panics are all turned into a 500
// carrying a human-readable message.
//
// Basic usage:
//
//	client, _ := upstream.NewClient(cfg.Upstream)
//	h := handlers.NewChatHandler(client,
//	    handlers.WithRecorder(collector),
//	    handlers.WithLogger(logger),
//	)
//	mux.Handle("POST /api/chat", h)
package handlers
