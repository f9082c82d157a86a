package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"blogger2jekyll/internal/convert"

	"github.com/spf13/cobra"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "blogger2jekyll",
		Short:         "blogger2jekyll imports Blogger exports into Jekyll sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log the details of the import")
	rootCmd.AddCommand(convert.ImportCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, convert.ErrorMessage(err))
		os.Exit(1)
	}
}
