package compat

import (
	"strconv"
	"strings"
)

// CompareVersions orders two dotted version strings numerically per
// segment ("9" < "10", "13.1" > "13"). Browser versions are not semver
// (no prerelease or build syntax), so non-numeric segments fall back to
// string comparison. Returns -1, 0, or 1.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		sa, sb := "0", "0"
		if i < len(as) && as[i] != "" {
			sa = as[i]
		}
		if i < len(bs) && bs[i] != "" {
			sb = bs[i]
		}
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case sa != sb:
			if sa < sb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// MaxVersion returns the greater of two version strings. An empty string
// always loses.
func MaxVersion(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if CompareVersions(a, b) >= 0 {
		return a
	}
	return b
}
