// Package gold converts copper amounts to and from the gold/silver/copper
// notation shown in game.
package gold

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	Copper int64 = 1
	Silver       = 100 * Copper
	Gold         = 100 * Silver
)

// Format renders a copper amount, e.g. 4308469686700 as
// "430,846,968g 67s 00c".
func Format(copper int64) string {
	sign := ""
	if copper < 0 {
		sign = "-"
		copper = -copper
	}
	return fmt.Sprintf("%s%sg %02ds %02dc",
		sign,
		humanize.Comma(copper/Gold),
		(copper%Gold)/Silver,
		copper%Silver,
	)
}

var partRe = regexp.MustCompile(`^(\d+)([gsc])$`)

// Parse reads an amount written as "12g 5s 3c" (any subset of the parts, in
// any order, thousands separators allowed) or a bare number of gold.
func Parse(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n * Gold, nil
	}

	var total int64
	for _, field := range strings.Fields(s) {
		m := partRe.FindStringSubmatch(strings.ToLower(field))
		if m == nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		switch m[2] {
		case "g":
			total += n * Gold
		case "s":
			total += n * Silver
		case "c":
			total += n
		}
	}
	return total, nil
}
