package departures

import (
	"testing"
	"time"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brisbane(t *testing.T) *time.Location {
	t.Helper()

	location, err := time.LoadLocation("Australia/Brisbane")
	require.NoError(t, err)

	return location
}

func timestamped(tripID string, departure time.Time) *ctdf.DepartureRecord {
	return &ctdf.DepartureRecord{
		TripID:             tripID,
		ScheduledDeparture: departure.Format(time.RFC3339),
		DepartureTime:      departure.Format(time.TimeOnly),
	}
}

func timeOfDay(tripID string, departure string) *ctdf.DepartureRecord {
	return &ctdf.DepartureRecord{TripID: tripID, DepartureTime: departure}
}

func tripIDs(records []*ctdf.DepartureRecord) []string {
	ids := []string{}
	for _, record := range records {
		ids = append(ids, record.TripID)
	}
	return ids
}

func TestFilterWindowTimestampBoundaries(t *testing.T) {
	location := brisbane(t)
	now := time.Date(2024, 6, 11, 9, 0, 0, 0, location)

	records := []*ctdf.DepartureRecord{
		timestamped("before", now.Add(-time.Second)),
		timestamped("now", now),
		timestamped("middle", now.Add(90*time.Minute)),
		timestamped("end", now.Add(2*time.Hour)),
		timestamped("after", now.Add(2*time.Hour+time.Second)),
	}

	filtered := FilterWindow(records, now, 2, location)

	assert.Equal(t, []string{"now", "middle", "end"}, tripIDs(filtered))
	assert.Len(t, records, 5)
}

func TestFilterWindowComparesInLocalTime(t *testing.T) {
	location := brisbane(t)
	now := time.Date(2024, 6, 11, 9, 0, 0, 0, location)

	records := []*ctdf.DepartureRecord{
		{TripID: "utc", ScheduledDeparture: "2024-06-10T23:30:00Z"},
		{TripID: "utc-late", ScheduledDeparture: "2024-06-11T01:30:00Z"},
	}

	assert.Equal(t, []string{"utc"}, tripIDs(FilterWindow(records, now.UTC(), 1, location)))
}

func TestFilterWindowTimeOfDay(t *testing.T) {
	location := brisbane(t)
	now := time.Date(2024, 6, 11, 9, 0, 0, 0, location)

	records := []*ctdf.DepartureRecord{
		timeOfDay("passed", "08:30:00"),
		timeOfDay("soon", "09:30:00"),
		timeOfDay("later", "13:00:00"),
		timeOfDay("early-tomorrow", "03:00:00"),
	}

	assert.Equal(t, []string{"soon"}, tripIDs(FilterWindow(records, now, 1, location)))
	assert.Equal(t, []string{"soon", "later", "early-tomorrow"}, tripIDs(FilterWindow(records, now, 24, location)))
}

func TestFilterWindowLateNightRollover(t *testing.T) {
	location := brisbane(t)
	now := time.Date(2024, 6, 11, 23, 50, 0, 0, location)

	records := []*ctdf.DepartureRecord{
		timeOfDay("just-missed", "23:45:00"),
		timeOfDay("after-midnight", "00:20:00"),
		timeOfDay("next-evening", "21:00:00"),
	}

	assert.Equal(t, []string{"after-midnight"}, tripIDs(FilterWindow(records, now, 4, location)))
	assert.Equal(t, []string{"just-missed", "after-midnight", "next-evening"}, tripIDs(FilterWindow(records, now, 24, location)))
}

func TestFilterWindowDropsMalformed(t *testing.T) {
	location := brisbane(t)
	now := time.Date(2024, 6, 11, 9, 0, 0, 0, location)

	records := []*ctdf.DepartureRecord{
		{TripID: "bad-timestamp", ScheduledDeparture: "tomorrow morning", DepartureTime: "09:30:00"},
		timeOfDay("bad-time", "9.30"),
		timeOfDay("empty", ""),
		nil,
		timeOfDay("good", "09:30:00"),
	}

	assert.Equal(t, []string{"good"}, tripIDs(FilterWindow(records, now, 2, location)))
}

func TestValidateWindow(t *testing.T) {
	assert.NoError(t, ValidateWindow(1))
	assert.NoError(t, ValidateWindow(168))
	assert.ErrorIs(t, ValidateWindow(0), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateWindow(169), ErrInvalidWindow)
}
