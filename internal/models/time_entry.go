package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeEntry is a tracked span of work as it arrives from a timesheet export.
// Duration, StartTime and EndTime are loosely typed: they are kept as text and
// only interpreted when the entry is billed.
type TimeEntry struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Duration    FlexibleNumber `json:"duration"`  // seconds
	StartTime   Timestamp      `json:"startTime"` // used only when Duration yields nothing
	EndTime     Timestamp      `json:"endTime"`
}

// FlexibleNumber holds a number that may be sent as a JSON number or as a
// numeric string. Decoding never fails on bad text; Float reports it instead.
type FlexibleNumber struct {
	Raw string
}

// Number wraps a float as a FlexibleNumber.
func Number(f float64) FlexibleNumber {
	return FlexibleNumber{Raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberString wraps already-formatted text, valid or not.
func NumberString(s string) FlexibleNumber {
	return FlexibleNumber{Raw: s}
}

// Present reports whether any value was supplied.
func (n FlexibleNumber) Present() bool {
	return strings.TrimSpace(n.Raw) != ""
}

// Float returns the finite numeric value, or false when absent or unparseable.
func (n FlexibleNumber) Float() (float64, bool) {
	s := strings.TrimSpace(n.Raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (n *FlexibleNumber) UnmarshalJSON(b []byte) error {
	n.Raw = rawScalar(b)
	return nil
}

func (n FlexibleNumber) MarshalJSON() ([]byte, error) {
	if f, ok := n.Float(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// timestampLayouts are tried in order. The space-separated shapes are what
// SQL timestamp columns look like once exported as text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a loosely typed point in time. Unparseable text is preserved
// and reported by Time rather than rejected at decode time.
type Timestamp struct {
	Raw string
}

// TimestampAt wraps t as a Timestamp.
func TimestampAt(t time.Time) Timestamp {
	return Timestamp{Raw: t.Format(time.RFC3339Nano)}
}

// Present reports whether any value was supplied.
func (ts Timestamp) Present() bool {
	return strings.TrimSpace(ts.Raw) != ""
}

// Time parses the timestamp, returning false when absent or malformed.
// Values without a zone are read as UTC. A bare integer is Unix time in
// milliseconds.
func (ts Timestamp) Time() (time.Time, bool) {
	s := strings.TrimSpace(ts.Raw)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	ts.Raw = rawScalar(b)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Raw)
}

// rawScalar turns a JSON scalar into text: strings are unquoted, null becomes
// empty, and anything else (numbers, booleans, objects) is kept verbatim.
func rawScalar(b []byte) string {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return ""
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return s
		}
	}
	return string(b)
}
