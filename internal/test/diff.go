package test

import (
	"strings"

	"github.com/evanw/treeshake/internal/logger"
)

// A line-by-line diff from the longest common subsequence of the two texts
func Diff(old string, new string, color bool) string {
	a := strings.Split(old, "\n")
	b := strings.Split(new, "\n")

	// lcs[i][j] is the length of the longest common subsequence of a[i:] and b[j:]
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var lines []string
	emit := func(prefix string, line string, escape string) {
		if color {
			lines = append(lines, escape+prefix+line+logger.TerminalColors.Reset)
		} else {
			lines = append(lines, prefix+line)
		}
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			emit(" ", a[i], logger.TerminalColors.Dim)
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			emit("-", a[i], logger.TerminalColors.Red)
			i++
		default:
			emit("+", b[j], logger.TerminalColors.Green)
			j++
		}
	}
	return strings.Join(lines, "\n")
}
