package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// imapDateRe matches `DD-Mon-YYYY HH:MM:SS ±ZZZZ`, optionally quoted.
var imapDateRe = regexp.MustCompile(`^"?(\d{1,2})-(\w{3})-(\d{4}) (\d{2}):(\d{2}):(\d{2}) ([+-]\d{4})"?$`)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// ParseIMAPDate parses the IMAP date-time format and returns the UTC
// instant, applying the ±ZZZZ offset per §4.2.
func ParseIMAPDate(s string) (time.Time, bool) {
	m := imapDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := months[m[2]]
	if !ok {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])

	offsetSign := 1
	offset := m[7]
	if offset[0] == '-' {
		offsetSign = -1
	}
	offHours, _ := strconv.Atoi(offset[1:3])
	offMinutes, _ := strconv.Atoi(offset[3:5])
	loc := time.FixedZone(fmt.Sprintf("UTC%s", offset), offsetSign*(offHours*3600+offMinutes*60))

	return time.Date(year, month, day, hour, minute, second, 0, loc).UTC(), true
}
