//go:build !(js || wasm)

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cottand/recpat/cmd"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "recpat [subcommand]",
	Short:        "recpat checks and compiles record and type pattern switches",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	cmd.AddLogFlags(rootCmd)
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.GenCmd)
	rootCmd.AddCommand(cmd.RunCmd)
}
