/*
Package server assembles the chat proxy's HTTP surface.

Routes:

	POST /api/chat   forward a prompt, answer {"result": "..."}
	GET  /health     liveness, always 200 while the process serves
	GET  /ready      readiness: credentials present and upstream healthy
	GET  /version    build information
	GET  /metrics    Prometheus exposition, when metrics are enabled

Every route runs behind the same middleware chain, outermost first:
recovery, request ID, tracing, access logging, CORS.

Usage:

	srv := server.New(cfg, upstreamClient,
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer.Tracer()),
		server.WithUpstreamHealth(upstreamClient),
	)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	if err := srv.Start(ctx); err != nil {
		return err
	}

Start returns after ctx is cancelled and in-flight requests have drained,
or the shutdown timeout has elapsed.
*/
package server
