// Package client holds the "client" subcommands that call a running dice
// service.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	dicev1alpha1 "github.com/KirkDiggler/rpg-sheets/internal/handlers/dice/v1alpha1"
)

var (
	serverAddr string
	timeout    time.Duration
)

var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Call the dice service of a running server",
	Long:  `Client commands send real gRPC requests to the dice service and print the response.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(parseCmd, rollCmd)
}

// withDiceClient dials the server, runs call under the request timeout and
// turns status errors back into readable messages.
func withDiceClient(call func(context.Context, dicev1alpha1.DiceServiceClient) error) error {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := call(ctx, dicev1alpha1.NewDiceServiceClient(conn)); err != nil {
		return errors.FromGRPCError(err)
	}
	return nil
}
