package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"

	dicev1alpha1 "github.com/KirkDiggler/rpg-sheets/internal/handlers/dice/v1alpha1"
)

var parseCmd = &cobra.Command{
	Use:   "parse [notation]",
	Short: "Normalize dice notation",
	Long: `Parse dice notation and show its canonical form and statistics. Examples:

  parse 1d8+2d6+4
  parse "d20 - 1"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(_ *cobra.Command, args []string) error {
	return withDiceClient(func(ctx context.Context, client dicev1alpha1.DiceServiceClient) error {
		resp, err := client.Parse(ctx, wrapperspb.String(args[0]))
		if err != nil {
			return err
		}

		fields := resp.GetFields()
		number := func(key string) int { return int(fields[key].GetNumberValue()) }
		fmt.Printf("Notation: %s\n", fields["notation"].GetStringValue())
		fmt.Printf("Dice:     %d\n", number("dice_count"))
		fmt.Printf("Modifier: %+d\n", number("modifier"))
		fmt.Printf("Average:  %d\n", number("average"))
		fmt.Printf("Range:    %d-%d\n", number("min"), number("max"))
		return nil
	})
}
