package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidYearMonth is returned when a year-month value cannot be parsed.
var ErrInvalidYearMonth = errors.New("invalid year-month, expected YYYY-MM")

// YearMonth is a calendar month without a day component, used for card
// expiry dates. It is stored and serialized as "YYYY-MM".
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth parses a "YYYY-MM" string into a YearMonth.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the YearMonth containing the given instant.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String renders the value as "YYYY-MM".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// IsZero reports whether the value is unset.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// MarshalJSON serializes the value as a "YYYY-MM" JSON string.
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ym.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM" JSON string.
func (ym *YearMonth) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// Value implements driver.Valuer; the database representation is the
// "YYYY-MM" string.
func (ym YearMonth) Value() (driver.Value, error) {
	return ym.String(), nil
}

// Scan implements sql.Scanner for TEXT/CHAR columns.
func (ym *YearMonth) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseYearMonth(v)
		if err != nil {
			return err
		}
		*ym = parsed
		return nil
	case []byte:
		return ym.Scan(string(v))
	case time.Time:
		*ym = YearMonthOf(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidYearMonth, src)
	}
}
