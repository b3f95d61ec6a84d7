// Command rpg-sheets serves the character sheets and the dice service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-sheets/cmd/server/client"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rpg-sheets",
		Short:        "D&D 5e character sheet server",
		Long:         `rpg-sheets serves character sheets whose play state lives in the page URL, plus a dice gRPC service.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(serverCmd, client.ClientCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
