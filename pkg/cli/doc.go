/*
Package cli provides helpers shared by the courier commands: output
formatting, error types with exit codes, signal handling and the waiting
indicator used by the interactive chat.

Signal handling for graceful shutdown:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	return srv.Start(ctx)

Mapping command errors to exit codes:

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
*/
package cli
