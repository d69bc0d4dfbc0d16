package js_parser

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

func hexValue(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c + 10 - 'a'), true
	case c >= 'A' && c <= 'F':
		return rune(c + 10 - 'A'), true
	}
	return 0, false
}

// Decodes the body of a string or template literal. The syntax was already
// checked, so malformed escapes are kept as written. Lone surrogates become
// U+FFFD.
func decodeEscapeSequences(text string) string {
	if strings.IndexByte(text, '\\') == -1 && strings.IndexByte(text, '\r') == -1 {
		return text
	}

	sb := strings.Builder{}
	var highSurrogate rune
	flush := func() {
		if highSurrogate != 0 {
			sb.WriteRune(utf8.RuneError)
			highSurrogate = 0
		}
	}
	write := func(c rune) {
		if c >= 0xD800 && c <= 0xDBFF {
			flush()
			highSurrogate = c
			return
		}
		if c >= 0xDC00 && c <= 0xDFFF {
			if highSurrogate != 0 {
				c = (highSurrogate-0xD800)<<10 + (c - 0xDC00) + 0x10000
				highSurrogate = 0
			} else {
				c = utf8.RuneError
			}
		} else {
			flush()
		}
		sb.WriteRune(c)
	}

	for i := 0; i < len(text); {
		c, width := utf8.DecodeRuneInString(text[i:])
		i += width

		switch c {
		case '\r':
			// Line terminators in templates are normalized to "\n"
			if i < len(text) && text[i] == '\n' {
				i++
			}
			write('\n')
			continue

		case '\\':
			if i >= len(text) {
				write('\\')
				continue
			}
			c2, width2 := utf8.DecodeRuneInString(text[i:])
			i += width2

			switch c2 {
			case 'b':
				write('\b')
			case 'f':
				write('\f')
			case 'n':
				write('\n')
			case 'r':
				write('\r')
			case 't':
				write('\t')
			case 'v':
				write('\v')

			case '\r':
				// Line continuation
				if i < len(text) && text[i] == '\n' {
					i++
				}
			case '\n', '\u2028', '\u2029':

			case '0', '1', '2', '3', '4', '5', '6', '7':
				// Up to three octal digits, with a value below 256
				value := c2 - '0'
				for j := 0; j < 2 && i < len(text) && text[i] >= '0' && text[i] <= '7'; j++ {
					next := value*8 + rune(text[i]-'0')
					if next >= 256 {
						break
					}
					value = next
					i++
				}
				write(value)

			case 'x':
				if i+2 <= len(text) {
					hi, ok1 := hexValue(text[i])
					lo, ok2 := hexValue(text[i+1])
					if ok1 && ok2 {
						write(hi<<4 | lo)
						i += 2
						continue
					}
				}
				write('x')

			case 'u':
				value := rune(0)
				if i < len(text) && text[i] == '{' {
					end := strings.IndexByte(text[i:], '}')
					if end == -1 {
						write('u')
						continue
					}
					for _, digit := range []byte(text[i+1 : i+end]) {
						d, _ := hexValue(digit)
						value = value<<4 | d
					}
					i += end + 1
				} else if i+4 <= len(text) {
					for j := 0; j < 4; j++ {
						d, _ := hexValue(text[i+j])
						value = value<<4 | d
					}
					i += 4
				}
				write(value)

			default:
				write(c2)
			}
			continue
		}

		write(c)
	}
	flush()
	return sb.String()
}

// Returns the value of a numeric literal and whether it is a BigInt. The
// BigInt value is returned as decimal digits.
func parseNumericLiteral(text string) (float64, string, bool) {
	text = strings.ReplaceAll(text, "_", "")

	if strings.HasSuffix(text, "n") {
		digits := text[:len(text)-1]
		value, ok := new(big.Int).SetString(digits, 0)
		if !ok {
			return 0, digits, true
		}
		return 0, value.String(), true
	}

	if len(text) > 1 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		default:
			// Legacy octal like "0777" unless it has a non-octal digit
			if strings.Trim(text[1:], "01234567") == "" {
				return parseInteger(text[1:], 8), "", false
			}
		}
		if base != 0 {
			return parseInteger(text[2:], base), "", false
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out of range values come back as infinity with an error
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return value, "", false
		}
		return math.NaN(), "", false
	}
	return value, "", false
}

func parseInteger(digits string, base int) float64 {
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	result, _ := new(big.Float).SetInt(value).Float64()
	return result
}
