// Package analytics records engagement events in an embedded SQLite
// database and aggregates them into the author dashboard: totals,
// period-over-period change, and a daily views series.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// EventType classifies an engagement event.
type EventType string

// Recorded event types.
const (
	EventView     EventType = "view"
	EventLike     EventType = "like"
	EventUnlike   EventType = "unlike"
	EventComment  EventType = "comment"
	EventBookmark EventType = "bookmark"
	EventFollow   EventType = "follow"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT NOT NULL,
	story_id   TEXT NOT NULL DEFAULT '',
	user_id    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type_time ON events(type, created_at);
CREATE INDEX IF NOT EXISTS idx_events_story ON events(story_id, type);
`

// Analytics is the event log handle.
type Analytics struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the analytics database at path.
// Pass ":memory:" for an ephemeral database in tests.
func Open(path string, logger *slog.Logger) (*Analytics, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock errors
	// under concurrent recording.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create analytics schema: %w", err)
	}

	if logger != nil {
		logger.Info("analytics database ready", "path", path)
	}
	return &Analytics{db: db, logger: logger}, nil
}

// Close releases the database.
func (a *Analytics) Close() error {
	return a.db.Close()
}

// Record appends one event. Recording is best-effort from the caller's
// perspective; services log failures instead of failing the request.
func (a *Analytics) Record(ctx context.Context, typ EventType, storyID, userID string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO events (type, story_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		string(typ), storyID, userID, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record %s event: %w", typ, err)
	}
	return nil
}

// StoryViews counts views for one story across all time.
func (a *Analytics) StoryViews(ctx context.Context, storyID string) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE type = ? AND story_id = ?`,
		string(EventView), storyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count story views: %w", err)
	}
	return count, nil
}

// DataPoint is one bucket of the daily views series.
type DataPoint struct {
	X int64 `json:"x"` // Unix millis at start of day (UTC)
	Y int   `json:"y"` // views that day
}

// StoryViewCount pairs a story with its view total in the dashboard window.
type StoryViewCount struct {
	StoryID string `json:"storyId"`
	Views   int    `json:"views"`
}

// Dashboard aggregates engagement for one time range.
type Dashboard struct {
	TimeRange       string           `json:"timeRange"`
	TotalViews      int              `json:"totalViews"`
	ViewsChange     float64          `json:"viewsChange"`
	TotalLikes      int              `json:"totalLikes"`
	LikesChange     float64          `json:"likesChange"`
	TotalComments   int              `json:"totalComments"`
	CommentsChange  float64          `json:"commentsChange"`
	TotalFollowers  int              `json:"totalFollowers"`
	FollowersChange float64          `json:"followersChange"`
	TotalBookmarks  int              `json:"totalBookmarks"`
	ViewsData       []DataPoint      `json:"viewsData"`
	TopStories      []StoryViewCount `json:"topStories"`
}

// rangeDays maps the API time ranges to day counts. Unknown ranges fall
// back to 30 days.
func rangeDays(timeRange string) int {
	switch timeRange {
	case "7d":
		return 7
	case "90d":
		return 90
	case "1y":
		return 365
	default:
		return 30
	}
}

// BuildDashboard aggregates the window ending now. Change percentages
// compare against the window of equal length immediately before it.
func (a *Analytics) BuildDashboard(ctx context.Context, timeRange string) (*Dashboard, error) {
	days := rangeDays(timeRange)
	now := time.Now()
	since := now.AddDate(0, 0, -days)
	prevSince := since.AddDate(0, 0, -days)

	d := &Dashboard{TimeRange: timeRange}

	counts := []struct {
		typ    EventType
		total  *int
		change *float64
	}{
		{EventView, &d.TotalViews, &d.ViewsChange},
		{EventLike, &d.TotalLikes, &d.LikesChange},
		{EventComment, &d.TotalComments, &d.CommentsChange},
		{EventFollow, &d.TotalFollowers, &d.FollowersChange},
		{EventBookmark, &d.TotalBookmarks, nil},
	}
	for _, c := range counts {
		current, err := a.countBetween(ctx, c.typ, since, now)
		if err != nil {
			return nil, err
		}
		*c.total = current

		if c.change != nil {
			previous, err := a.countBetween(ctx, c.typ, prevSince, since)
			if err != nil {
				return nil, err
			}
			*c.change = percentChange(previous, current)
		}
	}

	viewsData, err := a.dailyViews(ctx, since, now, days)
	if err != nil {
		return nil, err
	}
	d.ViewsData = viewsData

	topStories, err := a.topStories(ctx, since, now, 5)
	if err != nil {
		return nil, err
	}
	d.TopStories = topStories

	return d, nil
}

func (a *Analytics) countBetween(ctx context.Context, typ EventType, from, to time.Time) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE type = ? AND created_at >= ? AND created_at < ?`,
		string(typ), from.UnixMilli(), to.UnixMilli(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", typ, err)
	}
	return count, nil
}

// dailyViews returns one bucket per day, empty days included so charts
// draw a continuous line.
func (a *Analytics) dailyViews(ctx context.Context, from, to time.Time, days int) ([]DataPoint, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT created_at FROM events WHERE type = ? AND created_at >= ? AND created_at < ?`,
		string(EventView), from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily views: %w", err)
	}
	defer rows.Close()

	byDay := make(map[int64]int)
	for rows.Next() {
		var millis int64
		if err := rows.Scan(&millis); err != nil {
			return nil, fmt.Errorf("scan view event: %w", err)
		}
		byDay[dayStart(time.UnixMilli(millis))]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view events: %w", err)
	}

	series := make([]DataPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		day := dayStart(to.AddDate(0, 0, -i))
		series = append(series, DataPoint{X: day, Y: byDay[day]})
	}
	return series, nil
}

func (a *Analytics) topStories(ctx context.Context, from, to time.Time, limit int) ([]StoryViewCount, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT story_id, COUNT(*) AS views
		 FROM events
		 WHERE type = ? AND story_id != '' AND created_at >= ? AND created_at < ?
		 GROUP BY story_id
		 ORDER BY views DESC
		 LIMIT ?`,
		string(EventView), from.UnixMilli(), to.UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top stories: %w", err)
	}
	defer rows.Close()

	var top []StoryViewCount
	for rows.Next() {
		var s StoryViewCount
		if err := rows.Scan(&s.StoryID, &s.Views); err != nil {
			return nil, fmt.Errorf("scan top story: %w", err)
		}
		top = append(top, s)
	}
	return top, rows.Err()
}

func dayStart(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// percentChange returns the change from previous to current, in percent.
// A zero previous period reports 100% growth when anything happened at
// all, 0% otherwise.
func percentChange(previous, current int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
