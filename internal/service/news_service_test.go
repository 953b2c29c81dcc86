package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

func newTestNewsService(events []NewsEvent) (*NewsService, *int) {
	fetchCount := 0
	s := &NewsService{
		logger: zap.NewNop(),
		ttl:    5 * time.Minute,
		now:    time.Now,
	}
	s.fetch = func(ctx context.Context) ([]NewsEvent, error) {
		fetchCount++
		return events, nil
	}
	return s, &fetchCount
}

func TestGetNewsCachesWithinTTL(t *testing.T) {
	s, fetchCount := newTestNewsService([]NewsEvent{
		{Event: "CPI", Currency: "USD"},
	})

	for i := 0; i < 3; i++ {
		events, err := s.GetNews(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
	}
	if *fetchCount != 1 {
		t.Errorf("expected 1 fetch, got %d", *fetchCount)
	}
}

func TestGetNewsRefreshesAfterTTL(t *testing.T) {
	s, fetchCount := newTestNewsService([]NewsEvent{{Event: "NFP"}})

	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	if _, err := s.GetNews(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current = current.Add(6 * time.Minute)
	if _, err := s.GetNews(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *fetchCount != 2 {
		t.Errorf("expected 2 fetches, got %d", *fetchCount)
	}
}

func TestGetNewsServesStaleCacheOnFetchError(t *testing.T) {
	s, _ := newTestNewsService(nil)

	current := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	calls := 0
	s.fetch = func(ctx context.Context) ([]NewsEvent, error) {
		calls++
		if calls == 1 {
			return []NewsEvent{{Event: "Rate Decision"}}, nil
		}
		return nil, errors.New("upstream down")
	}

	if _, err := s.GetNews(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current = current.Add(10 * time.Minute)
	events, err := s.GetNews(context.Background())
	if err != nil {
		t.Fatalf("expected stale cache, got error: %v", err)
	}
	if len(events) != 1 || events[0].Event != "Rate Decision" {
		t.Errorf("expected stale cached event, got %+v", events)
	}
}

func TestInvalidateCacheForcesRefetch(t *testing.T) {
	s, fetchCount := newTestNewsService([]NewsEvent{{Event: "GDP"}})

	if _, err := s.GetNews(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.InvalidateCache()
	if _, err := s.GetNews(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *fetchCount != 2 {
		t.Errorf("expected 2 fetches after invalidate, got %d", *fetchCount)
	}
}

func TestGetRangeFiltersByDate(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}
	s, _ := newTestNewsService([]NewsEvent{
		{Event: "before", Date: day(1)},
		{Event: "inside", Date: day(15)},
		{Event: "edge", Date: day(20)},
		{Event: "after", Date: day(25)},
	})

	events, err := s.GetRange(context.Background(), day(10), day(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Event != "inside" || events[1].Event != "edge" {
		t.Errorf("got %+v", events)
	}
}

func TestUpcomingSkipsPastAndCapsAtTen(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	var all []NewsEvent
	all = append(all, NewsEvent{Event: "past", Date: now.AddDate(0, 0, -2)})
	for i := 0; i < 15; i++ {
		all = append(all, NewsEvent{Event: "future", Date: now.AddDate(0, 0, i)})
	}

	s, _ := newTestNewsService(all)
	s.now = func() time.Time { return now }

	events, err := s.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Event == "past" {
			t.Errorf("past event included: %+v", e)
		}
	}
}

const calendarFixture = `
<table>
<tr class="calendar__row">
  <td class="calendar__date">MonAug 31</td>
  <td class="calendar__time">8:30am</td>
  <td class="calendar__currency">USD</td>
  <td class="calendar__impact"><span class="icon icon--ff-impact-red"></span></td>
  <td class="calendar__event">Non-Farm Payrolls</td>
</tr>
<tr class="calendar__row">
  <td class="calendar__date"></td>
  <td class="calendar__time"></td>
  <td class="calendar__currency">EUR</td>
  <td class="calendar__impact"><span class="icon icon--ff-impact-yel"></span></td>
  <td class="calendar__event">German Retail Sales</td>
</tr>
</table>`

func TestParseCalendar(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(calendarFixture))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	events := parseCalendar(doc, now)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.Currency != "USD" || first.Event != "Non-Farm Payrolls" {
		t.Errorf("got %+v", first)
	}
	if first.Impact != "high" {
		t.Errorf("expected high impact, got %q", first.Impact)
	}
	if first.Date != time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) {
		t.Errorf("expected Aug 31 2026, got %v", first.Date)
	}
	if first.Time != "8:30am" {
		t.Errorf("expected 8:30am, got %q", first.Time)
	}

	// second row inherits date and time from the first
	second := events[1]
	if second.Date != first.Date || second.Time != first.Time {
		t.Errorf("expected carried-over date/time, got %+v", second)
	}
	if second.Impact != "low" {
		t.Errorf("expected low impact, got %q", second.Impact)
	}
}
