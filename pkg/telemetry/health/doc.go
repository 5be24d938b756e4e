// Package health implements the liveness, readiness and version endpoints.
//
// Liveness (/health) answers 200 whenever the process can serve HTTP. It
// never touches the upstream.
//
// Readiness (/ready) runs every registered CheckFunc concurrently, each
// bounded by the checker timeout, and answers 503 with status "degraded"
// when any check fails. The server registers two checks:
//
//   - credentials: application id and API key are configured
//   - upstream: the upstream client has not crossed its failure threshold
//
// The upstream check reads passive state kept by the upstream client and
// its cron prober; it does not send a request of its own.
//
// Usage:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("upstream", health.UpstreamCheck(client))
//	mux.HandleFunc("GET /ready", checker.ReadinessHandler())
package health
