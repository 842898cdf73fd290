package wordleservice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalidDay is returned for a day option that names no puzzle.
var ErrInvalidDay = errors.New("invalid day")

var dateLayouts = []string{"2006-01-02", "1/2/2006", "1/2/06", "Jan 2 2006", "January 2 2006"}

// ParseDayOption accepts a puzzle number ("213"), a date ("1/18/2022",
// "2022-01-18") or a relative phrase ("yesterday") and returns the puzzle
// day it falls on.
func ParseDayOption(input string, cal wordledomain.Calendar, now time.Time) (uint32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDay)
	}

	if n, err := strconv.ParseUint(input, 10, 32); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("%w: puzzle numbers start at 1", ErrInvalidDay)
		}
		return uint32(n), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.ReplaceAll(input, ",", ""), time.UTC); err == nil {
			return dayOn(cal, t)
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	if r == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, input)
	}
	return dayOn(cal, r.Time)
}

func dayOn(cal wordledomain.Calendar, t time.Time) (uint32, error) {
	d := cal.DayAt(t)
	if d == 0 {
		return 0, fmt.Errorf("%w: %s is before the first puzzle", ErrInvalidDay, t.Format("2006-01-02"))
	}
	return d, nil
}
