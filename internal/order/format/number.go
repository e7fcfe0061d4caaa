package format

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var randPadRe = regexp.MustCompile(`\{RAND(\d)\}`)

const DefaultOrderNumberTemplate = "SQ-{DD}-{MM}-{YY}-{RAND4}"

// GenerateOrderNumber builds the client-side fallback order number from
// template. {RANDn} expands to a random n-digit number without a leading
// zero, so {RAND4} is in [1000,9999]. Numbers are not guaranteed unique;
// the server-issued number is preferred whenever the backend answers.
func GenerateOrderNumber(template string, now time.Time, rnd *rand.Rand) (string, error) {
	if template == "" {
		template = DefaultOrderNumberTemplate
	}
	if rnd == nil {
		return "", fmt.Errorf("order number random source is nil")
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", now.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", now.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", now.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", now.Format("02"))

	out = randPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := randPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		low := pow10(width - 1)
		return strconv.Itoa(low + rnd.IntN(pow10(width)-low))
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in order number format: %s", out)
	}
	return out, nil
}

func pow10(n int) int {
	v := 1
	for range n {
		v *= 10
	}
	return v
}
