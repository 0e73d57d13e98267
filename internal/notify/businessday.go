package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const holidayCacheTTL = 48 * time.Hour

// Gate answers "should notifications run today". Weekends never do;
// otherwise a public-holiday lookup decides. The lookup is best-effort:
// any failure falls back to treating the day as a business day, since a
// skipped notification hurts more than a redundant one.
type Gate struct {
	baseURL string
	country string
	client  *http.Client
	redis   *redis.Client
	logger  *slog.Logger
}

// NewGate constructs the business-day gate. redis is optional; without
// it every check hits the holiday API.
func NewGate(baseURL, country string, redisClient *redis.Client, logger *slog.Logger) *Gate {
	return &Gate{
		baseURL: baseURL,
		country: country,
		client:  &http.Client{Timeout: 5 * time.Second},
		redis:   redisClient,
		logger:  logger,
	}
}

// IsBusinessDay reports whether t is a Mon-Fri non-holiday day.
func (g *Gate) IsBusinessDay(ctx context.Context, t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !g.isHoliday(ctx, t)
}

func (g *Gate) isHoliday(ctx context.Context, t time.Time) bool {
	day := t.Format("2006-01-02")
	cacheKey := fmt.Sprintf("holiday:%s:%s", g.country, day)

	if g.redis != nil {
		if cached, err := g.redis.Get(ctx, cacheKey).Result(); err == nil {
			return cached == "1"
		}
	}

	holiday, err := g.lookupHoliday(ctx, t.Year(), day)
	if err != nil {
		g.logger.Warn("holiday lookup failed, assuming business day", slog.Any("error", err))
		return false
	}

	if g.redis != nil {
		value := "0"
		if holiday {
			value = "1"
		}
		if err := g.redis.Set(ctx, cacheKey, value, holidayCacheTTL).Err(); err != nil {
			g.logger.Warn("holiday cache write", slog.Any("error", err))
		}
	}
	return holiday
}

func (g *Gate) lookupHoliday(ctx context.Context, year int, day string) (bool, error) {
	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", g.baseURL, year, g.country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("notify: build holiday request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("notify: fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("notify: holiday api status %d", resp.StatusCode)
	}

	var holidays []struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return false, fmt.Errorf("notify: decode holidays: %w", err)
	}
	for _, h := range holidays {
		if h.Date == day {
			return true, nil
		}
	}
	return false, nil
}
