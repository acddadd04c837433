package token

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tenantgate/pkg/problems"
)

var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

var expiryUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// maxExpiry caps the policy so the seconds value cannot overflow.
const maxExpiry = 3650 * 24 * time.Hour

// ParseExpiry interprets a token lifetime policy: a bare integer number of
// seconds ("3600") or <integer><unit> with unit one of s, m, h, d ("15m").
// Anything else, including a zero lifetime, is a configuration error.
func ParseExpiry(policy string) (time.Duration, error) {
	policy = strings.TrimSpace(policy)
	var d time.Duration
	if n, err := strconv.ParseInt(policy, 10, 64); err == nil {
		if n <= 0 || n > int64(maxExpiry/time.Second) {
			return 0, invalidExpiry(policy)
		}
		d = time.Duration(n) * time.Second
	} else {
		m := expiryPattern.FindStringSubmatch(policy)
		if m == nil {
			return 0, invalidExpiry(policy)
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		unit := expiryUnits[m[2]]
		if err != nil || n <= 0 || n > int64(maxExpiry/unit) {
			return 0, invalidExpiry(policy)
		}
		d = time.Duration(n) * unit
	}
	return d, nil
}

func invalidExpiry(policy string) error {
	return problems.Configuration("Invalid JWT_EXPIRES_IN configuration", fmt.Errorf("unsupported expiry policy %q", policy))
}
