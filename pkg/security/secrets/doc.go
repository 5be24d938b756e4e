/*
Package secrets resolves ${secret:name} references in configuration.

The upstream application ID and API key may be written in the config file
as references instead of literal values:

	upstream:
	  app_id: ${secret:dashscope-app-id}
	  api_key: ${secret:dashscope-api-key}

A Manager looks each name up through its providers in order:

  - EnvProvider reads COURIER_SECRET_<NAME>, with the name upper-cased and
    hyphens replaced by underscores.
  - FileProvider reads <dir>/<name>, the layout of a Kubernetes secret
    volume. Files must be mode 0600 or 0400 and names must be a single
    path element.

Resolved values are held in a TTL cache. With watch enabled the file
provider evicts a value as soon as its file changes, and WatchUpstream
re-resolves the upstream credentials so a rotated key reaches the running
proxy without a restart.

Usage:

	mgr, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
	if err != nil {
		return err
	}
	defer mgr.Close()

	refs := cfg.Upstream
	if err := mgr.ResolveUpstream(ctx, &cfg.Upstream); err != nil {
		return err
	}
	go mgr.WatchUpstream(ctx, refs, func(u config.UpstreamConfig) {
		client.SetCredentials(upstream.Credentials{AppID: u.AppID, APIKey: u.APIKey})
	})

Secret values are never logged; names are masked in debug output.
*/
package secrets
