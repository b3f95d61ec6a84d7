package dice

import (
	"fmt"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

var (
	// ErrInvalidNotation is the cause of every ParseError
	ErrInvalidNotation = errors.InvalidArgument("invalid dice notation")

	// ErrInvalidDice is the cause of every InvalidDiceError
	ErrInvalidDice = errors.InvalidArgument("invalid dice")
)

// ParseError reports text that is not dice notation.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dice: cannot parse %q: %s", e.Text, e.Reason)
}

// Unwrap lets callers use errors.Is(err, ErrInvalidNotation) and keeps the
// InvalidArgument code visible to errors.GetCode.
func (e *ParseError) Unwrap() error {
	return ErrInvalidNotation
}

// InvalidDiceError reports a term that cannot be represented.
type InvalidDiceError struct {
	Term Term
}

func (e *InvalidDiceError) Error() string {
	return fmt.Sprintf("dice: invalid term %dd%d: count must be >= 0 and faces >= 0", e.Term.Count, e.Term.Faces)
}

// Unwrap returns ErrInvalidDice
func (e *InvalidDiceError) Unwrap() error {
	return ErrInvalidDice
}
