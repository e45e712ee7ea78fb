package model

import (
	"fmt"
	"strconv"
	"strings"
)

// NextOSNumber generates the next year-scoped service order number in the
// form C<year>-NNN. The suffix is zero-padded to three digits for display
// but grows past 999 without truncation.
func NextOSNumber(existing []string, year int) string {
	prefix := fmt.Sprintf("C%d-", year)

	highest := 0
	for _, osNum := range existing {
		if !strings.HasPrefix(osNum, prefix) {
			continue
		}
		parts := strings.SplitN(osNum, "-", 2)
		if len(parts) != 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("C%d-%03d", year, highest+1)
}
