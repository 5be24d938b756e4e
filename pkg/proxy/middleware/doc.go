// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// # Middleware Chain
//
// The server assembles the chain outermost first:
//
//	handler = Recovery(RequestID(Tracing(Logging(CORS(mux)))))
//
// Recovery sits outside everything else so that a panic anywhere in the
// chain still produces a {"result": ...} body with status 500.
//
// # Request ID
//
// RequestIDMiddleware reuses a well-formed X-Request-ID header or generates a
// UUID v4. The ID is stored through logging.WithRequestID, so every log line
// written with a request context carries it:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// # Logging
//
// LoggingMiddleware writes one "request completed" record per request:
//
//	{
//	  "time": "2026-03-02T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/api/chat",
//	  "status": 200,
//	  "latency_ms": 1250,
//	  "response_bytes": 48,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// 5xx responses are logged at ERROR and 4xx at WARN.
//
// # CORS
//
// CORSMiddleware is configured from the proxy.cors section:
//
//	proxy:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["https://chat.example.com"]
//	    allowed_methods: ["GET", "POST", "OPTIONS"]
//	    allowed_headers: ["Content-Type", "X-Request-ID"]
//	    max_age: 3600
package middleware
