package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const forexFactoryURL = "https://www.forexfactory.com/calendar"

// NewsEvent is one economic calendar entry.
type NewsEvent struct {
	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Currency string    `json:"currency"`
	Event    string    `json:"event"`
	Impact   string    `json:"impact"` // high, medium, low
	Source   string    `json:"source"`
}

// NewsService scrapes the ForexFactory economic calendar and caches the
// result. Scraping is best effort: a failed refresh keeps the stale cache.
type NewsService struct {
	logger *zap.Logger
	ttl    time.Duration

	mu        sync.Mutex
	events    []NewsEvent
	fetchedAt time.Time

	// swapped out in tests
	now   func() time.Time
	fetch func(ctx context.Context) ([]NewsEvent, error)

	cron *cron.Cron
}

func NewNewsService(logger *zap.Logger, conf *config.Config) *NewsService {
	ttlMinutes := conf.News.CacheTTLMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 5
	}

	client := &http.Client{Timeout: 30 * time.Second}
	if conf.News.ProxyURL != "" {
		if proxyURL, err := url.Parse(conf.News.ProxyURL); err == nil {
			client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		} else {
			logger.Warn("invalid news proxy url", zap.String("proxy", conf.News.ProxyURL), zap.Error(err))
		}
	}

	s := &NewsService{
		logger: logger,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
	s.fetch = func(ctx context.Context) ([]NewsEvent, error) {
		return fetchForexFactory(ctx, client, s.now())
	}
	return s
}

// GetNews returns the cached calendar, refreshing when the cache is stale.
func (s *NewsService) GetNews(ctx context.Context) ([]NewsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.events != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.events, nil
	}

	events, err := s.fetch(ctx)
	if err != nil {
		if s.events != nil {
			s.logger.Warn("news refresh failed, serving stale cache", zap.Error(err))
			return s.events, nil
		}
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}

	s.events = events
	s.fetchedAt = s.now()
	return events, nil
}

// GetRange filters the calendar to events dated within [start, end].
func (s *NewsService) GetRange(ctx context.Context, start, end time.Time) ([]NewsEvent, error) {
	events, err := s.GetNews(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]NewsEvent, 0)
	for _, e := range events {
		if !e.Date.Before(start) && !e.Date.After(end) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Upcoming returns the next ten events from today on.
func (s *NewsService) Upcoming(ctx context.Context) ([]NewsEvent, error) {
	events, err := s.GetNews(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	upcoming := make([]NewsEvent, 0, 10)
	for _, e := range events {
		if e.Date.Before(today) {
			continue
		}
		upcoming = append(upcoming, e)
		if len(upcoming) == 10 {
			break
		}
	}
	return upcoming, nil
}

// InvalidateCache drops the cache so the next read refetches.
func (s *NewsService) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.fetchedAt = time.Time{}
}

// StartRefreshWorker refreshes the cache in the background so reads rarely
// pay the scrape latency.
func (s *NewsService) StartRefreshWorker() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.InvalidateCache()
		if _, err := s.GetNews(ctx); err != nil {
			s.logger.Warn("background news refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *NewsService) StopRefreshWorker() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func fetchForexFactory(ctx context.Context, client *http.Client, now time.Time) ([]NewsEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, forexFactoryURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar html: %w", err)
	}

	return parseCalendar(doc, now), nil
}

// parseCalendar walks the calendar table. Date and time cells are only set on
// the first row of each group, so both carry over row to row.
func parseCalendar(doc *html.Node, now time.Time) []NewsEvent {
	var events []NewsEvent
	var currentDate time.Time
	var currentTime string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" && hasClass(n, "calendar__row") {
			if date, ok := parseDateCell(findCellText(n, "calendar__date"), now); ok {
				currentDate = date
			}
			if t := findCellText(n, "calendar__time"); t != "" {
				currentTime = t
			}

			currency := findCellText(n, "calendar__currency")
			event := findCellText(n, "calendar__event")
			if currency != "" && event != "" && !currentDate.IsZero() {
				events = append(events, NewsEvent{
					Date:     currentDate,
					Time:     currentTime,
					Currency: currency,
					Event:    event,
					Impact:   findImpact(n),
					Source:   "forexfactory",
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// parseDateCell turns a "MonAug 30" style cell into a date in the current
// year. Dates far behind now are assumed to belong to the next year.
func parseDateCell(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"MonJan 2", "Mon Jan 2", "Jan 2"} {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		date := time.Date(now.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		if date.Before(now.AddDate(0, -6, 0)) {
			date = date.AddDate(1, 0, 0)
		}
		return date, true
	}
	return time.Time{}, false
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func classAttr(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return attr.Val
		}
	}
	return ""
}

func findCellText(row *html.Node, class string) string {
	var result string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "td" && hasClass(n, class) {
			result = strings.TrimSpace(nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return result
}

func findImpact(row *html.Node) string {
	impact := ""
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if impact != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "span" {
			class := classAttr(n)
			switch {
			case strings.Contains(class, "icon--ff-impact-red"):
				impact = "high"
			case strings.Contains(class, "icon--ff-impact-ora"):
				impact = "medium"
			case strings.Contains(class, "icon--ff-impact-yel"):
				impact = "low"
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return impact
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
