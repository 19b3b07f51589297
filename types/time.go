package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time represents a time.Time object that can be unmarshalled from a float64
// or string. The integer part selects the unit by digit count (seconds up to
// 10 digits, then milliseconds, microseconds and nanoseconds) and any
// fractional part is a fraction of that unit, so FTX stream timestamps such as
// 1585236549.5616553 keep their sub-second precision.
// MarshalJSON serializes the time to JSON using RFC 3339 format.
type Time time.Time

// UnmarshalJSON deserializes json, and timestamp information.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	switch s {
	case "null", `""`:
		*t = Time(time.Time{})
		return nil
	}

	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if !isDigits(intPart) || (hasFrac && !isDigits(fracPart)) {
		return fmt.Errorf("%w for `%v`", strconv.ErrSyntax, string(data))
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return err
	}

	var unit time.Duration
	switch l := len(intPart); {
	case l <= 10:
		unit = time.Second
	case l == 13:
		unit = time.Millisecond
	case l == 16:
		unit = time.Microsecond
	case l == 19:
		unit = time.Nanosecond
	default:
		return fmt.Errorf("cannot unmarshal %s into Time", string(data))
	}

	var frac time.Duration
	if hasFrac {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		f, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return err
		}
		scale := int64(1)
		for range fracPart {
			scale *= 10
		}
		frac = time.Duration(f) * unit / time.Duration(scale)
	}

	if whole == 0 && frac == 0 {
		*t = Time(time.Time{})
		return nil
	}

	*t = Time(time.Unix(0, int64(time.Duration(whole)*unit+frac)))
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Time represents a time instance.
func (t Time) Time() time.Time { return time.Time(t) }

// String returns a string representation of the time.
func (t Time) String() string {
	return t.Time().String()
}

// MarshalJSON serializes the time to json.
func (t Time) MarshalJSON() ([]byte, error) {
	return t.Time().MarshalJSON()
}
