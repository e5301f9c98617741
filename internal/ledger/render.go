package ledger

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

func RenderCredit(name string, totals map[string]int) string {
	if len(totals) == 0 {
		return fmt.Sprintf("**%s** has not received any reactions.", name)
	}
	return render(fmt.Sprintf("Reactions received by **%s**:", name), totals, " unique users")
}

func RenderDebit(name string, totals map[string]int) string {
	if len(totals) == 0 {
		return fmt.Sprintf("**%s** has not given any reactions.", name)
	}
	return render(fmt.Sprintf("Reactions given by **%s**:", name), totals, "")
}

func RenderBalance(name string, totals map[string]int) string {
	if len(totals) == 0 {
		return fmt.Sprintf("**%s** has no reaction balance.", name)
	}
	return render(fmt.Sprintf("Reaction balance for **%s**:", name), totals, "")
}

// render lists one emoji per line in key order.
func render(header string, totals map[string]int, unit string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, emoji := range slices.Sorted(maps.Keys(totals)) {
		fmt.Fprintf(&b, "%s: %d%s\n", emoji, totals[emoji], unit)
	}
	return b.String()
}
