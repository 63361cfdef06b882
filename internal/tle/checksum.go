package tle

// Checksum computes the NORAD modulo-10 checksum over every character of
// line except the last. Digits count as their value, a minus sign counts as
// one, and everything else (blanks, plus signs, decimal points, letters)
// counts as zero.
func Checksum(line string) int {
	if len(line) == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < len(line)-1; i++ {
		sum += charValue(line[i])
	}
	return sum % 10
}

// CheckDigit returns the numeric value of the final character of line, or
// -1 when that character is not a digit.
func CheckDigit(line string) int {
	if len(line) == 0 {
		return -1
	}
	c := line[len(line)-1]
	if c < '0' || c > '9' {
		return -1
	}
	return int(c - '0')
}

// VerifyChecksum reports whether line carries a correct check digit.
func VerifyChecksum(line string) bool {
	d := CheckDigit(line)
	return d >= 0 && Checksum(line) == d
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c == '-':
		return 1
	default:
		return 0
	}
}
