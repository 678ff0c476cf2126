package gtfs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	schedule := parseArchive(t, map[string]string{
		"stops.txt": `
stop_id,stop_name,stop_lat,stop_lon,platform_code
600005,"Central station, platform 1",-27.4659,153.0258,1
317584,Riverside ferry terminal,-27.4667,153.0319,
`,
		"routes.txt": `
route_id,route_short_name,route_long_name,route_type
F1-4055,F1,CityCat,4
BNFG-4049,BNFG,Beenleigh - Ferny Grove,2
`,
		"trips.txt": `
route_id,service_id,trip_id,trip_headsign,direction_id
F1-4055,WD1,T1,Northshore Hamilton,0
`,
		"stop_times.txt": `
trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,317584,1
T1,25:10:00,25:10:00,600005,2
`,
		"calendar.txt": `
service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date
WD1,1,1,1,1,1,0,0,20240101,20241231
`,
		"calendar_dates.txt": `
service_id,date,exception_type
WD1,20240610,2
`,
		"shapes.txt": `
shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence
`,
	})

	require.Len(t, schedule.Stops, 2)
	assert.Equal(t, "Central station, platform 1", schedule.Stops[0].Name)
	assert.Equal(t, "1", schedule.Stops[0].PlatformCode)
	assert.Equal(t, "", schedule.Stops[1].PlatformCode)

	location := schedule.Stops[0].Location()
	require.NotNil(t, location)
	assert.InDelta(t, -27.4659, location.Latitude(), 0.00001)
	assert.InDelta(t, 153.0258, location.Longitude(), 0.00001)

	require.Len(t, schedule.Routes, 2)
	assert.Equal(t, "F1-4055", schedule.Routes[0].ID)
	assert.Equal(t, "F1 CityCat", schedule.Routes[0].DisplayName())

	require.Len(t, schedule.Trips, 1)
	assert.Equal(t, "outbound", schedule.Trips[0].Direction())

	require.Len(t, schedule.StopTimes, 2)
	assert.Equal(t, "25:10:00", schedule.StopTimes[1].DepartureTime)

	require.Len(t, schedule.Calendars, 1)
	require.Len(t, schedule.CalendarDates, 1)
	assert.Equal(t, ExceptionTypeRemoved, schedule.CalendarDates[0].Exception())
}

func TestParseFileMissingFilesAreEmpty(t *testing.T) {
	schedule := parseArchive(t, map[string]string{
		"stops.txt": `
stop_id,stop_name,stop_lat,stop_lon
1,Somewhere,-27.0,153.0
`,
	})

	assert.Len(t, schedule.Stops, 1)
	assert.Empty(t, schedule.Routes)
	assert.Empty(t, schedule.Trips)
	assert.Empty(t, schedule.StopTimes)
	assert.Empty(t, schedule.Calendars)
	assert.Empty(t, schedule.CalendarDates)
}

func TestParseFileDropsInvalidRows(t *testing.T) {
	schedule := parseArchive(t, map[string]string{
		"routes.txt": `
route_id,route_short_name,route_type
R1,One,2
,Missing id,2
R3,Bad type,train
`,
		"stop_times.txt": `
trip_id,arrival_time,departure_time,stop_id,stop_sequence
T1,08:00:00,08:00:00,A,1
T1,,,B,2
T1,08:10:00,08:10:00,,3
`,
	})

	require.Len(t, schedule.Routes, 1)
	assert.Equal(t, "R1", schedule.Routes[0].ID)

	require.Len(t, schedule.StopTimes, 1)
	assert.Equal(t, "A", schedule.StopTimes[0].StopID)
}

func TestParseFileStripsByteOrderMark(t *testing.T) {
	schedule := parseArchive(t, map[string]string{
		"stops.txt": "\xEF\xBB\xBFstop_id,stop_name\nS1,First\n",
	})

	require.Len(t, schedule.Stops, 1)
	assert.Equal(t, "S1", schedule.Stops[0].ID)
}

func TestParseFileEmptyTable(t *testing.T) {
	schedule := parseArchive(t, map[string]string{
		"trips.txt": "",
	})

	assert.Empty(t, schedule.Trips)
}

func TestParseFileRejectsNonArchive(t *testing.T) {
	schedule := &Schedule{}
	err := schedule.ParseFile(bytes.NewBufferString("not a zip file"))

	assert.Error(t, err)
}
