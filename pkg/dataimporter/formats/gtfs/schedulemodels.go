package gtfs

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

// Every field is kept as the raw text from the feed, typed values are parsed on access

const DateFormat = "20060102"

var ErrMissingField = errors.New("missing required field")

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)

	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ","))
}

type Stop struct {
	ID           string `csv:"stop_id"`
	Code         string `csv:"stop_code"`
	Name         string `csv:"stop_name"`
	Description  string `csv:"stop_desc"`
	Latitude     string `csv:"stop_lat"`
	Longitude    string `csv:"stop_lon"`
	ZoneID       string `csv:"zone_id"`
	URL          string `csv:"stop_url"`
	Type         string `csv:"location_type"`
	Parent       string `csv:"parent_station"`
	PlatformCode string `csv:"platform_code"`
}

func (s Stop) Identifier() string { return s.ID }

func (s Stop) Validate() error {
	return requireFields(map[string]string{"stop_id": s.ID, "stop_name": s.Name})
}

// Location returns nil when the stop has no usable coordinates
func (s Stop) Location() *ctdf.Location {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(s.Latitude), 64)
	if err != nil {
		return nil
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(s.Longitude), 64)
	if err != nil {
		return nil
	}

	return ctdf.NewLocation(latitude, longitude)
}

func (s Stop) CTDFStop() *ctdf.Stop {
	return &ctdf.Stop{
		Identifier: s.ID,
		Name:       s.Name,
		Type:       ctdf.StopTypeStop,
		Location:   s.Location(),
	}
}

type Route struct {
	ID          string `csv:"route_id"`
	AgencyID    string `csv:"agency_id"`
	ShortName   string `csv:"route_short_name"`
	LongName    string `csv:"route_long_name"`
	Description string `csv:"route_desc"`
	Type        string `csv:"route_type"`
	URL         string `csv:"route_url"`
	Colour      string `csv:"route_color"`
	TextColour  string `csv:"route_text_color"`
}

func (r Route) Identifier() string { return r.ID }

func (r Route) Validate() error {
	if err := requireFields(map[string]string{"route_id": r.ID, "route_type": r.Type}); err != nil {
		return err
	}

	if _, err := r.RouteType(); err != nil {
		return fmt.Errorf("invalid route_type %q", r.Type)
	}

	return nil
}

func (r Route) RouteType() (int, error) {
	return strconv.Atoi(strings.TrimSpace(r.Type))
}

func (r Route) DisplayName() string {
	switch {
	case r.ShortName != "" && r.LongName != "":
		return fmt.Sprintf("%s %s", r.ShortName, r.LongName)
	case r.LongName != "":
		return r.LongName
	default:
		return r.ShortName
	}
}

type Trip struct {
	RouteID     string `csv:"route_id"`
	ServiceID   string `csv:"service_id"`
	ID          string `csv:"trip_id"`
	Headsign    string `csv:"trip_headsign"`
	DirectionID string `csv:"direction_id"`
	BlockID     string `csv:"block_id"`
	ShapeID     string `csv:"shape_id"`
}

func (t Trip) Identifier() string { return t.ID }

func (t Trip) Validate() error {
	return requireFields(map[string]string{"trip_id": t.ID, "route_id": t.RouteID, "service_id": t.ServiceID})
}

// Direction maps direction_id onto a readable value, empty when the feed does not say
func (t Trip) Direction() string {
	switch strings.TrimSpace(t.DirectionID) {
	case "0":
		return ctdf.DirectionOutbound
	case "1":
		return ctdf.DirectionInbound
	default:
		return ""
	}
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	StopHeadsign  string `csv:"stop_headsign"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
}

func (s StopTime) Identifier() string { return fmt.Sprintf("%s#%s", s.TripID, s.StopSequence) }

func (s StopTime) Validate() error {
	if err := requireFields(map[string]string{
		"trip_id":       s.TripID,
		"stop_id":       s.StopID,
		"stop_sequence": s.StopSequence,
	}); err != nil {
		return err
	}

	if s.ArrivalTime == "" && s.DepartureTime == "" {
		return fmt.Errorf("%w: arrival_time,departure_time", ErrMissingField)
	}

	return nil
}

func (s StopTime) Sequence() (int, error) {
	return strconv.Atoi(strings.TrimSpace(s.StopSequence))
}

type Calendar struct {
	ServiceID string `csv:"service_id"`
	Monday    string `csv:"monday"`
	Tuesday   string `csv:"tuesday"`
	Wednesday string `csv:"wednesday"`
	Thursday  string `csv:"thursday"`
	Friday    string `csv:"friday"`
	Saturday  string `csv:"saturday"`
	Sunday    string `csv:"sunday"`
	Start     string `csv:"start_date"`
	End       string `csv:"end_date"`
}

func (c Calendar) Identifier() string { return c.ServiceID }

func (c Calendar) Validate() error {
	return requireFields(map[string]string{"service_id": c.ServiceID, "start_date": c.Start, "end_date": c.End})
}

func (c Calendar) RunsOn(weekday time.Weekday) bool {
	var flag string
	switch weekday {
	case time.Monday:
		flag = c.Monday
	case time.Tuesday:
		flag = c.Tuesday
	case time.Wednesday:
		flag = c.Wednesday
	case time.Thursday:
		flag = c.Thursday
	case time.Friday:
		flag = c.Friday
	case time.Saturday:
		flag = c.Saturday
	case time.Sunday:
		flag = c.Sunday
	}

	return strings.TrimSpace(flag) == "1"
}

// DateRange parses start_date and end_date in the given location
func (c Calendar) DateRange(location *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateFormat, strings.TrimSpace(c.Start), location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(DateFormat, strings.TrimSpace(c.End), location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

type ExceptionType int

const (
	ExceptionTypeAdded   ExceptionType = 1
	ExceptionTypeRemoved ExceptionType = 2
)

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType string `csv:"exception_type"`
}

func (c CalendarDate) Identifier() string { return fmt.Sprintf("%s@%s", c.ServiceID, c.Date) }

func (c CalendarDate) Validate() error {
	if err := requireFields(map[string]string{
		"service_id":     c.ServiceID,
		"date":           c.Date,
		"exception_type": c.ExceptionType,
	}); err != nil {
		return err
	}

	exceptionType := c.Exception()
	if exceptionType != ExceptionTypeAdded && exceptionType != ExceptionTypeRemoved {
		return fmt.Errorf("invalid exception_type %q", c.ExceptionType)
	}

	return nil
}

func (c CalendarDate) Exception() ExceptionType {
	value, err := strconv.Atoi(strings.TrimSpace(c.ExceptionType))
	if err != nil {
		return 0
	}
	return ExceptionType(value)
}
