package n42

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses the xsd:duration subset used for N42 live and real
// times, such as "PT3600S", "PT1H2M3.5S" or "P1DT2H". Year and month
// designators are rejected since they have no fixed length.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || s[0] != 'P' {
		return 0, false
	}
	s = s[1:]

	var total float64
	inTime := false
	seen := false

	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime {
				return 0, false
			}
			inTime = true
			s = s[1:]
			continue
		}

		end := strings.IndexAny(s, "DHMS")
		if end <= 0 {
			return 0, false
		}
		v, err := strconv.ParseFloat(s[:end], 64)
		if err != nil || v < 0 {
			return 0, false
		}

		switch unit := s[end]; {
		case unit == 'D' && !inTime:
			total += v * 86400
		case unit == 'H' && inTime:
			total += v * 3600
		case unit == 'M' && inTime:
			total += v * 60
		case unit == 'S' && inTime:
			total += v
		default:
			return 0, false
		}
		seen = true
		s = s[end+1:]
	}

	if !seen || total*float64(time.Second) > math.MaxInt64 {
		return 0, false
	}
	return time.Duration(math.Round(total * float64(time.Second))), true
}
