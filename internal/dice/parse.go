package dice

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxDice bounds the dice one expression may hold. Notation arrives from
// players and from the dice service, and every die costs a roll.
const MaxDice = 1000

// termRegex matches one unsigned term: "2d6", "d20" or "3".
var termRegex = regexp.MustCompile(`^(?:(\d*)d(\d+)|(\d+))$`)

// Parse reads dice notation. Terms are joined with "+" or "-"; only flat
// numbers may be subtracted. Whitespace and case are ignored.
func Parse(text string) (Value, error) {
	s := strings.ToLower(strings.Join(strings.Fields(text), ""))
	if s == "" {
		return Value{}, &ParseError{Text: text, Reason: "empty expression"}
	}

	var terms []Term
	modifier := 0
	total := 0

	for len(s) > 0 {
		sign := 1
		switch s[0] {
		case '+':
			s = s[1:]
		case '-':
			sign = -1
			s = s[1:]
		}

		end := strings.IndexAny(s, "+-")
		if end < 0 {
			end = len(s)
		}
		token := s[:end]
		s = s[end:]

		if token == "" {
			return Value{}, &ParseError{Text: text, Reason: "missing term"}
		}

		matches := termRegex.FindStringSubmatch(token)
		if matches == nil {
			return Value{}, &ParseError{Text: text, Reason: "expected [count]d<faces> or an integer, got " + strconv.Quote(token)}
		}

		if matches[3] != "" {
			n, err := strconv.Atoi(matches[3])
			if err != nil {
				return Value{}, &ParseError{Text: text, Reason: "number out of range"}
			}
			modifier += sign * n
			continue
		}

		if sign < 0 {
			return Value{}, &ParseError{Text: text, Reason: "dice cannot be subtracted"}
		}

		count := 1
		if matches[1] != "" {
			n, err := strconv.Atoi(matches[1])
			if err != nil {
				return Value{}, &ParseError{Text: text, Reason: "dice count out of range"}
			}
			count = n
		}
		if count > MaxDice-total {
			return Value{}, &ParseError{Text: text, Reason: "more than " + strconv.Itoa(MaxDice) + " dice"}
		}
		total += count

		faces, err := strconv.Atoi(matches[2])
		if err != nil || faces == 0 {
			return Value{}, &ParseError{Text: text, Reason: "die faces must be a positive integer"}
		}

		terms = append(terms, Term{Count: count, Faces: faces})
	}

	return normalize(terms, modifier), nil
}

// MustParse is Parse that panics. Use it for notation written in code.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}
