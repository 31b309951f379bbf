package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/staypoint/staypoint/internal/observability/logger"
	"github.com/staypoint/staypoint/internal/observability/tracing"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ScraperConfig holds the CSS selectors used to extract rate data from a
// provider page.
type ScraperConfig struct {
	RoomSelector string
	RateSelector string
	UserAgent    string
}

func (c ScraperConfig) withDefaults() ScraperConfig {
	if strings.TrimSpace(c.RoomSelector) == "" {
		c.RoomSelector = "[data-room-name], .room-name"
	}
	if strings.TrimSpace(c.RateSelector) == "" {
		c.RateSelector = "[data-room-rate], .room-rate"
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = "staypoint-bot/1.0"
	}
	return c
}

// Scraper fetches a provider page and extracts the first room offer.
type Scraper struct {
	client *http.Client
	cfg    ScraperConfig
}

// NewScraper builds the default provider client. The HTTP client is
// instrumented for trace propagation.
func NewScraper(cfg ScraperConfig) *Scraper {
	return &Scraper{
		client: tracing.WrapHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		cfg:    cfg.withDefaults(),
	}
}

// Fetch retrieves the locator page for the stay window. Transport failures
// surface as errors; pages missing the expected markup surface as a Result
// with OK=false.
func (s *Scraper) Fetch(ctx context.Context, locator string, checkIn, checkOut time.Time) (Result, error) {
	url := ExpandLocator(locator, checkIn, checkOut)
	if url == "" {
		return Result{}, ErrEmptyLocator
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.FromContext(ctx).Warn("provider returned non-200",
			zap.String("locator", logger.MaskLocator(locator)),
			zap.Int("status", resp.StatusCode),
		)
		return Result{OK: false, ErrorMessage: fmt.Sprintf("provider status %d", resp.StatusCode)}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{OK: false, ErrorMessage: "unparsable provider page"}, nil
	}

	roomLabel := strings.TrimSpace(doc.Find(s.cfg.RoomSelector).First().Text())
	rateText := strings.TrimSpace(doc.Find(s.cfg.RateSelector).First().Text())
	if roomLabel == "" || rateText == "" {
		return Result{OK: false, ErrorMessage: "room offer not found on page"}, nil
	}

	return Result{RoomLabel: roomLabel, RateText: rateText, OK: true}, nil
}

// ExpandLocator substitutes the stay dates into a locator template. The
// {checkin} and {checkout} placeholders are optional; locators without them
// are returned as-is.
func ExpandLocator(locator string, checkIn, checkOut time.Time) string {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return ""
	}
	locator = strings.ReplaceAll(locator, "{checkin}", checkIn.Format(dateLayout))
	locator = strings.ReplaceAll(locator, "{checkout}", checkOut.Format(dateLayout))
	return locator
}
