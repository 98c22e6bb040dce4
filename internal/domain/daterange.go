package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the layout used for report range bounds sent to the work system.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)

// ValidateDate checks a YYYY-M-D report bound. Only field ranges are checked:
// year 2000-3000, month 1-12, day 1-31. Days past the end of a shorter month
// are accepted.
func ValidateDate(s string) error {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return &FormatError{Input: s, Expected: "YYYY-M-D"}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	switch {
	case year < 2000 || year > 3000:
		return &RangeError{Input: s, Bounds: "year must be between 2000 and 3000"}
	case month < 1 || month > 12:
		return &RangeError{Input: s, Bounds: "month must be between 1 and 12"}
	case day < 1 || day > 31:
		return &RangeError{Input: s, Bounds: "day must be between 1 and 31"}
	}
	return nil
}

// Today formats now's calendar date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// WeekStart returns the most recent Monday on or before now.
func WeekStart(now time.Time) string {
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format(DateLayout)
}

// DateRange is an inclusive report window.
type DateRange struct {
	Since string
	Until string
}

// Validate checks both bounds.
func (r DateRange) Validate() error {
	for _, d := range []string{r.Since, r.Until} {
		if err := ValidateDate(d); err != nil {
			return err
		}
	}
	return nil
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Since, r.Until)
}
