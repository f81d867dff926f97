package morph

import (
	"fmt"
)

// DecodeBCV splits a six-digit BBCCVV position code into book, chapter and
// verse. Each part must be a positive two-digit decimal number.
func DecodeBCV(code string) (book, chapter, verse int, err error) {
	if len(code) != 6 {
		return 0, 0, 0, fmt.Errorf("position code %q: want 6 digits, got %d characters", code, len(code))
	}

	parts := [3]int{}
	for i := range parts {
		hi, lo := code[i*2], code[i*2+1]
		if !isDigit(hi) || !isDigit(lo) {
			return 0, 0, 0, fmt.Errorf("position code %q: non-digit in field %d", code, i+1)
		}
		parts[i] = int(hi-'0')*10 + int(lo-'0')
		if parts[i] == 0 {
			return 0, 0, 0, fmt.Errorf("position code %q: field %d is zero", code, i+1)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// EncodeBCV formats book, chapter and verse as a BBCCVV position code.
func EncodeBCV(book, chapter, verse int) (string, error) {
	for i, v := range [3]int{book, chapter, verse} {
		if v < 1 || v > 99 {
			return "", fmt.Errorf("field %d out of range 1-99: %d", i+1, v)
		}
	}
	return fmt.Sprintf("%02d%02d%02d", book, chapter, verse), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
