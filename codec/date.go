package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// maxDateMillis bounds representable instants to ±100,000,000 days around the
// Unix epoch, the range of a JavaScript Date.
const maxDateMillis = 8.64e15

// Date is a millisecond-precision instant. The zero value is the invalid
// date, the result of decoding a date payload that cannot be parsed.
type Date struct {
	t     time.Time
	valid bool
}

var _ Value = Date{}

func (Date) Kind() Kind { return KindDate }
func (Date) isValue()   {}

// DateOf truncates t to milliseconds. Instants outside the representable
// range produce an invalid date.
func DateOf(t time.Time) Date {
	ms := t.UnixMilli()
	if ms > maxDateMillis || ms < -maxDateMillis {
		return Date{}
	}
	return Date{t: time.UnixMilli(ms).UTC(), valid: true}
}

// InvalidDate returns the invalid date sentinel.
func InvalidDate() Date { return Date{} }

// Valid reports whether d holds an instant.
func (d Date) Valid() bool { return d.valid }

// Time returns the instant in UTC, or the zero time for an invalid date.
func (d Date) Time() time.Time { return d.t }

// Equal reports whether both dates are the same instant, or both invalid.
func (d Date) Equal(o Date) bool {
	if d.valid != o.valid {
		return false
	}
	return !d.valid || d.t.Equal(o.t)
}

// ISO renders YYYY-MM-DDTHH:mm:ss.sssZ, with a signed six-digit year outside
// 0000..9999. It fails for an invalid date.
func (d Date) ISO() (string, error) {
	if !d.valid {
		return "", ErrInvalidDate
	}
	t := d.t.UTC()
	var year string
	switch y := t.Year(); {
	case y < 0:
		year = fmt.Sprintf("-%06d", -y)
	case y > 9999:
		year = fmt.Sprintf("+%06d", y)
	default:
		year = fmt.Sprintf("%04d", y)
	}
	return year + t.Format("-01-02T15:04:05.000Z"), nil
}

func (d Date) String() string {
	s, err := d.ISO()
	if err != nil {
		return "Invalid Date"
	}
	return s
}

// MarshalJSON nests dates inside object, map and set payloads as ISO strings;
// invalid dates become null.
func (d Date) MarshalJSON() ([]byte, error) {
	s, err := d.ISO()
	if err != nil {
		return []byte("null"), nil
	}
	return []byte(`"` + s + `"`), nil
}

var isoRe = regexp.MustCompile(`^([+-]\d{6}|\d{4})(?:-(\d{2})(?:-(\d{2}))?)?` +
	`(?:T(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?(Z|[+-]\d{2}:\d{2})?)?$`)

// fallbackLayouts are the non-ISO renderings Date.prototype.toUTCString and
// toString produce, plus common RFC forms.
var fallbackLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
	time.ANSIC,
	time.RFC850,
}

// ParseDate parses an ISO-8601 date string, falling back to a few textual
// layouts. Date-only forms are UTC; date-time forms without an offset are
// local time. Unparsable input yields the invalid date.
func ParseDate(s string) Date {
	if m := isoRe.FindStringSubmatch(s); m != nil {
		if d, ok := fromISOParts(m); ok {
			return d
		}
		return Date{}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t)
		}
	}
	return Date{}
}

func fromISOParts(m []string) (Date, bool) {
	if m[1] == "-000000" {
		return Date{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, day := 1, 1
	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		day, _ = strconv.Atoi(m[3])
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return Date{}, false
	}

	loc := time.UTC
	var hour, min, sec, nsec int
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		min, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		if m[7] != "" {
			frac := m[7]
			for len(frac) < 9 {
				frac += "0"
			}
			nsec, _ = strconv.Atoi(frac)
		}
		if min > 59 || sec > 59 || hour > 24 || (hour == 24 && (min|sec|nsec) != 0) {
			return Date{}, false
		}
		switch zone := m[8]; {
		case zone == "":
			loc = time.Local
		case zone != "Z":
			oh, _ := strconv.Atoi(zone[1:3])
			om, _ := strconv.Atoi(zone[4:6])
			if oh > 23 || om > 59 {
				return Date{}, false
			}
			off := oh*3600 + om*60
			if zone[0] == '-' {
				off = -off
			}
			loc = time.FixedZone("", off)
		}
	}

	d := DateOf(time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc))
	return d, d.valid
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
