package datasets

import (
	"fmt"
	"time"

	"github.com/senseyeio/duration"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

const (
	DefaultTimezone        = "Australia/Brisbane"
	DefaultHorizon         = "P2D"
	DefaultDownloadTimeout = 2 * time.Minute
)

type DataSet struct {
	Identifier    string
	DataSourceRef string `json:"-" yaml:"-"`
	Format        DataSetFormat

	Provider Provider `yaml:"-"`

	Mode ctdf.TransportType

	Source               string
	RealtimeSource       string               `yaml:"realtimesource"`
	SourceAuthentication SourceAuthentication `json:"-" yaml:"sourceauthentication"`

	Timezone        string
	Horizon         string
	DownloadTimeout time.Duration `yaml:"downloadtimeout"`
	RefreshInterval time.Duration `yaml:"refreshinterval"`

	// Overrides the route id convention of the mode, used by the realtime filter
	RouteIDPrefix string `yaml:"routeidprefix"`
}

type SourceAuthentication struct {
	Query  map[string]string
	Header map[string]string
}

type DataSetFormat string

const (
	DataSetFormatGTFSSchedule DataSetFormat = "gtfs-schedule"
)

type Provider struct {
	Name    string
	Website string
}

func (d *DataSet) Validate() error {
	if d.Identifier == "" {
		return fmt.Errorf("dataset has no identifier")
	}
	if d.Format != DataSetFormatGTFSSchedule {
		return fmt.Errorf("dataset %s: unrecognised format %q", d.Identifier, d.Format)
	}
	if _, err := ctdf.ParseTransportType(string(d.Mode)); err != nil {
		return fmt.Errorf("dataset %s: %w", d.Identifier, err)
	}
	if d.Source == "" {
		return fmt.Errorf("dataset %s has no source", d.Identifier)
	}
	if _, err := d.Location(); err != nil {
		return fmt.Errorf("dataset %s: %w", d.Identifier, err)
	}
	if _, err := d.HorizonDuration(); err != nil {
		return fmt.Errorf("dataset %s: invalid horizon: %w", d.Identifier, err)
	}

	return nil
}

func (d *DataSet) Location() (*time.Location, error) {
	timezone := d.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return time.LoadLocation(timezone)
}

func (d *DataSet) HorizonDuration() (duration.Duration, error) {
	horizon := d.Horizon
	if horizon == "" {
		horizon = DefaultHorizon
	}
	return duration.ParseISO8601(horizon)
}

// HorizonDates returns the first and last civil day processed when running on today
func (d *DataSet) HorizonDates(today time.Time) (time.Time, time.Time, error) {
	horizon, err := d.HorizonDuration()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	end := horizon.Shift(start).AddDate(0, 0, -1)
	if end.Before(start) {
		end = start
	}

	return start, end, nil
}

func (d *DataSet) Timeout() time.Duration {
	if d.DownloadTimeout > 0 {
		return d.DownloadTimeout
	}
	return DefaultDownloadTimeout
}

func (d *DataSet) RealtimeRouteIDPrefix() string {
	if d.RouteIDPrefix != "" {
		return d.RouteIDPrefix
	}
	return d.Mode.RouteIDPrefix()
}

func (d *DataSet) DataSource() *ctdf.DataSource {
	return &ctdf.DataSource{
		OriginalFormat: string(d.Format),
		Provider:       d.Provider.Name,
		Dataset:        d.Identifier,
		Identifier:     d.DataSourceRef,
	}
}
