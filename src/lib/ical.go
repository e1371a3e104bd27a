package lib

import (
	"bytes"
	"cbe/src/config"
	"cbe/src/utils"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/apognu/gocal"
)

var feedClient = &http.Client{Timeout: config.FEED_FETCH_TIMEOUT}

// blockingSummaries is a deliberate allow-list: only events whose summary
// matches exactly count as blocking. Unrelated calendar entries never block
// a unit.
var blockingSummaries = map[string]bool{
	"Reserved": true,
	"Blocked":  true,
}

type BlockedRange struct {
	Start   time.Time
	End     time.Time
	Summary string
}

// FetchCalendar retrieves the raw iCal document from a unit's feed URL. Any
// non-2xx response is a hard failure for the enclosing sync run.
func FetchCalendar(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.FEED_USER_AGENT)
	req.Header.Set("Accept", "text/calendar")
	res, err := feedClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("feed returned status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// ParseBlockedEvents extracts blocking VEVENT entries falling inside
// [from, to] from a raw calendar document.
func ParseBlockedEvents(data []byte, from, to time.Time) ([]BlockedRange, error) {
	parser := gocal.NewParser(bytes.NewReader(data))
	parser.Start, parser.End = &from, &to
	// Real feeds carry the occasional malformed VEVENT (missing DTSTAMP is
	// common). Drop the bad event, never the whole feed.
	parser.Strict = gocal.StrictParams{Mode: gocal.StrictModeFailEvent}
	if err := parser.Parse(); err != nil {
		return nil, fmt.Errorf("could not parse calendar: %s", err.Error())
	}
	ranges := make([]BlockedRange, 0, len(parser.Events))
	for _, event := range parser.Events {
		if event.Start == nil || event.End == nil {
			continue
		}
		if !blockingSummaries[event.Summary] {
			continue
		}
		ranges = append(ranges, BlockedRange{
			Start:   *event.Start,
			End:     *event.End,
			Summary: event.Summary,
		})
	}
	return ranges, nil
}

// ReduceBlockedDates expands each range into per-day dates (end exclusive,
// following iCal all-day semantics) and collapses overlaps into a sorted,
// deduplicated set.
func ReduceBlockedDates(ranges []BlockedRange) []string {
	seen := make(map[string]struct{})
	for _, r := range ranges {
		for _, date := range utils.EnumerateDates(r.Start, r.End) {
			seen[date] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
