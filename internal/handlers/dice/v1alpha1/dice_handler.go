// Package v1alpha1 handles the dice grpc service interface
package v1alpha1

import (
	"context"
	stderrors "errors"
	"log/slog"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// MaxTimes caps how often one Roll request repeats the roll
const MaxTimes = 100

// DiceHandlerConfig holds dependencies for the dice handler
type DiceHandlerConfig struct {
	Roller toolkitdice.Roller
}

// Validate ensures all required dependencies are present
func (c *DiceHandlerConfig) Validate() error {
	if c.Roller == nil {
		return errors.InvalidArgument("roller is required")
	}
	return nil
}

// DiceHandler implements the dice gRPC service
type DiceHandler struct {
	roller toolkitdice.Roller
}

var _ DiceServiceServer = (*DiceHandler)(nil)

// NewDiceHandler creates a new dice handler with the given configuration
func NewDiceHandler(cfg *DiceHandlerConfig) (*DiceHandler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &DiceHandler{
		roller: cfg.Roller,
	}, nil
}

// Parse returns the canonical notation of the request and its statistics
func (h *DiceHandler) Parse(
	_ context.Context,
	req *wrapperspb.StringValue,
) (*structpb.Struct, error) {
	v, err := parseNotation(req.GetValue())
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"notation":   v.String(),
		"modifier":   v.Modifier(),
		"dice_count": v.DiceCount(),
		"average":    v.Average(),
		"min":        v.Min(),
		"max":        v.Max(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to build response"))
	}
	return resp, nil
}

// Roll rolls the notation in the request, doubled on crit, times times
func (h *DiceHandler) Roll(
	_ context.Context,
	req *structpb.Struct,
) (*structpb.Struct, error) {
	fields := req.GetFields()

	v, err := parseNotation(fields["notation"].GetStringValue())
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if fields["crit"].GetBoolValue() {
		v = v.Crit()
	}

	times := 1
	if t, ok := fields["times"]; ok {
		times = int(t.GetNumberValue())
		if float64(times) != t.GetNumberValue() || times < 1 || times > MaxTimes {
			return nil, errors.ToGRPCError(
				errors.InvalidArgumentf("times must be a whole number from 1 to %d", MaxTimes).
					WithMeta("times", t.GetNumberValue()))
		}
	}

	var (
		rolled []any
		totals []any
		total  int
	)
	for range times {
		result, err := v.Roll(h.roller)
		if err != nil {
			return nil, errors.ToGRPCError(err)
		}
		for _, t := range result.Rolls {
			for _, r := range t.Results {
				rolled = append(rolled, r)
			}
		}
		totals = append(totals, result.Total)
		total += result.Total
	}

	slog.Info("Rolled dice",
		"notation", v.String(),
		"times", times,
		"total", total)

	resp, err := structpb.NewStruct(map[string]any{
		"notation": v.String(),
		"dice":     rolled,
		"modifier": v.Modifier(),
		"totals":   totals,
		"total":    total,
	})
	if err != nil {
		return nil, errors.ToGRPCError(errors.Wrap(err, "failed to build response"))
	}
	return resp, nil
}

func parseNotation(text string) (dice.Value, error) {
	if text == "" {
		return dice.Value{}, errors.InvalidArgument("notation is required")
	}

	v, err := dice.Parse(text)
	if err != nil {
		var parseErr *dice.ParseError
		if stderrors.As(err, &parseErr) {
			return dice.Value{}, errors.InvalidArgumentf("cannot parse %q: %s", parseErr.Text, parseErr.Reason).
				WithMeta("notation", parseErr.Text)
		}
		return dice.Value{}, err
	}
	return v, nil
}
