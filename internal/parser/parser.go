// Package parser extracts structured trip requests and driver commands from
// free-form chat messages.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shuttle/internal/domain"
)

var (
	lineSplitter = regexp.MustCompile(`\n|,`)
	linePattern  = regexp.MustCompile(`(?i)^(pickup|dropoff|drop-off|date|time|datetime|passengers|pax|wait|waiting|distance|pickup_distance|pickup-distance)\s*[:=]\s*(.+)$`)
	nonNumeric   = regexp.MustCompile(`[^0-9.]`)
)

// dateTimeLayouts are tried in order after "/" has been replaced with "-".
var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-1-2 15:04",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04pm",
	"2006-01-02 3:04 pm",
	"2006-01-02",
}

// Result is the outcome of parsing a trip request message.
type Result struct {
	Request domain.TripRequest
	Missing domain.MissingFields
}

// Complete reports whether every required field was resolved.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// ParseMessage turns free text into a TripRequest. Date and time are
// interpreted in loc. Required fields that cannot be resolved are listed in
// Result.Missing rather than returned as an error.
func ParseMessage(text string, loc *time.Location) Result {
	values := keyValues(strings.TrimSpace(text))

	var req domain.TripRequest
	req.Pickup = domain.Place{Label: values["pickup"]}
	req.Dropoff = domain.Place{Label: first(values, "dropoff", "drop-off")}

	if start, ok := parseDateTime(values["date"], values["time"], values["datetime"], loc); ok {
		req.Start = start
	}

	if n, ok := parseCount(first(values, "passengers", "pax")); ok {
		req.Passengers = n
	}
	if n, ok := parseCount(first(values, "wait", "waiting")); ok {
		req.WaitingMinutes = n
	}
	if n, ok := parseNumber(values["distance"]); ok {
		req.DistanceKm = &n
	}
	if n, ok := parseNumber(first(values, "pickup_distance", "pickup-distance")); ok {
		req.PickupDistanceKm = &n
	}

	return Result{Request: req, Missing: req.Missing()}
}

func keyValues(text string) map[string]string {
	out := make(map[string]string)
	for _, raw := range lineSplitter.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	return out
}

func first(values map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := values[k]; v != "" {
			return v
		}
	}
	return ""
}

// parseDateTime prefers a combined datetime value over separate date and time.
func parseDateTime(date, clock, combined string, loc *time.Location) (time.Time, bool) {
	candidate := combined
	if candidate == "" {
		if date == "" || clock == "" {
			return time.Time{}, false
		}
		candidate = date + " " + clock
	}
	candidate = strings.ReplaceAll(strings.TrimSpace(candidate), "/", "-")

	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, candidate); err == nil {
		return t.In(loc), true
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCount parses a whole number. Fractions and values beyond int32 are
// reported as absent.
func parseCount(raw string) (int, bool) {
	n, ok := parseNumber(raw)
	if !ok || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// parseNumber strips everything except digits and dots. Empty or unparsable
// values are reported as absent.
func parseNumber(raw string) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
