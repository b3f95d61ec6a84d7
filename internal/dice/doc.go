// Package dice models compound dice expressions such as "2d6+3".
//
// A Value is an immutable, normalized multiset of dice terms plus a flat
// modifier. Terms with the same face count are merged, zero-count terms are
// dropped, and terms are ordered by descending faces, so two Values that
// describe the same expression compare equal and render the same text.
//
// Arithmetic follows 5e table rules:
//
//	dice.MustParse("d6").Add(dice.MustParse("d6"))  // 2d6
//	dice.MustParse("d6").Multiply(3)                // 3d6, roll it three times
//	dice.MustParse("2d6+3").Crit()                  // 4d6+3, only dice double
//
// Multiply never scales the modifier. It means "roll this N times", not
// "N times the average".
package dice
