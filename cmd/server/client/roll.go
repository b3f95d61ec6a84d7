package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	dicev1alpha1 "github.com/KirkDiggler/rpg-sheets/internal/handlers/dice/v1alpha1"
)

var (
	crit  bool
	times int
)

var rollCmd = &cobra.Command{
	Use:   "roll [notation]",
	Short: "Roll dice using dice notation",
	Long: `Roll dice and see individual results. Examples:

  roll 2d6+3
  roll d8+2 --crit
  roll 4d6 --times 6`,
	Args: cobra.ExactArgs(1),
	RunE: runRoll,
}

func init() {
	rollCmd.Flags().BoolVar(&crit, "crit", false, "Double the dice for a critical hit")
	rollCmd.Flags().IntVar(&times, "times", 1, "Number of times to roll (1-100)")
}

func runRoll(_ *cobra.Command, args []string) error {
	req, err := structpb.NewStruct(map[string]any{
		"notation": args[0],
		"crit":     crit,
		"times":    times,
	})
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	return withDiceClient(func(ctx context.Context, client dicev1alpha1.DiceServiceClient) error {
		resp, err := client.Roll(ctx, req)
		if err != nil {
			return err
		}

		fields := resp.AsMap()
		fmt.Printf("%v\n", fields["notation"])
		fmt.Printf("Dice:  %v\n", fields["dice"])
		if times > 1 {
			fmt.Printf("Rolls: %v\n", fields["totals"])
		}
		fmt.Printf("Total: %v\n", fields["total"])
		return nil
	})
}
