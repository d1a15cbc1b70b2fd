/*
Package cli provides shared helpers for the lcopilot command.

Output formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal handling for the serve mode:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled on SIGINT or SIGTERM
*/
package cli
