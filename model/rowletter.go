package model

// RowLetterToIndex converts a well's row letter to a 0-based index ('A' -> 0).
// Only the first byte is consulted; trays with more than 26 rows need a
// different convention and are out of scope.
func RowLetterToIndex(rowLetter string) int {
	if rowLetter == "" {
		return 0
	}
	return int(rowLetter[0] - 'A')
}
