package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDurationPattern  = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	wordDurationPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(days?|d|hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
	bareNumberPattern   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// ParseDuration 解析時間字串：ISO-8601（PT1H30M）、文字（"1 hour 30 minutes"）或純數字。
// 純數字一律視為分鐘。
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := isoDurationPattern.FindStringSubmatch(s); m != nil {
		units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
		var total time.Duration
		for i, unit := range units {
			if m[i+1] == "" {
				continue
			}
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return 0, false
			}
			total += time.Duration(v * float64(unit))
		}
		return total, total > 0
	}

	if bareNumberPattern.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(v * float64(time.Minute)), v > 0
	}

	var total time.Duration
	for _, m := range wordDurationPattern.FindAllStringSubmatch(s, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += time.Duration(v * float64(durationUnit(m[2])))
	}
	return total, total > 0
}

func durationUnit(u string) time.Duration {
	switch u = strings.ToLower(u); {
	case strings.HasPrefix(u, "d"):
		return 24 * time.Hour
	case strings.HasPrefix(u, "h"):
		return time.Hour
	case strings.HasPrefix(u, "m"):
		return time.Minute
	}
	return time.Second
}

// FormatMinutes 輸出 "1 hour 30 minutes" 形式
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	parts := make([]string, 0, 2)
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
