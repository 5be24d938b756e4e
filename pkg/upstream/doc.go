// Package upstream is the HTTP client for the managed completion service.
//
// A Client posts a single completion request per call:
//
//	POST {base_url}/api/v1/apps/{app_id}/completion
//	Authorization: Bearer {api_key}
//	Content-Type: application/json
//
//	{"input":{"prompt":"..."},"parameters":{},"debug":{}}
//
// and returns the response body as a jsonvalue.Value. There are no retries.
// The configured timeout covers connect, request and body read.
//
// # Errors
//
// Every failure is one of four types, classified by Kind:
//
//   - TransportError: no response could be obtained
//   - TimeoutError: the per-call timeout elapsed
//   - StatusError: non-2xx status, with the JSON error envelope when present
//   - ParseError: 2xx status with a body that is not JSON
//
// # Health
//
// The client tracks consecutive failures across calls and probes. Three in a
// row mark the upstream unhealthy; the next success restores it. 4xx
// responses do not count as failures for health purposes. A Prober runs
// Probe on a cron schedule so the verdict stays fresh without traffic.
package upstream
