package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Schedule struct {
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

type record interface {
	Identifier() string
	Validate() error
}

func (gtfs *Schedule) ParseFile(reader io.Reader) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("open gtfs archive: %w", err)
	}

	fileMap := map[string]func(*zip.File) error{
		"stops.txt":          func(f *zip.File) error { return decodeTable(f, &gtfs.Stops) },
		"routes.txt":         func(f *zip.File) error { return decodeTable(f, &gtfs.Routes) },
		"trips.txt":          func(f *zip.File) error { return decodeTable(f, &gtfs.Trips) },
		"stop_times.txt":     func(f *zip.File) error { return decodeTable(f, &gtfs.StopTimes) },
		"calendar.txt":       func(f *zip.File) error { return decodeTable(f, &gtfs.Calendars) },
		"calendar_dates.txt": func(f *zip.File) error { return decodeTable(f, &gtfs.CalendarDates) },
	}
	loaded := map[string]bool{}

	for _, zipFile := range archive.File {
		fileName := zipFile.Name
		decode, exists := fileMap[fileName]
		if !exists {
			log.Debug().Str("file", fileName).Msg("Ignoring gtfs file")
			continue
		}

		log.Info().Str("file", fileName).Msg("Loading file")
		if err := decode(zipFile); err != nil {
			log.Error().Str("file", fileName).Err(err).Msg("Failed to parse csv file")
			return fmt.Errorf("parse %s: %w", fileName, err)
		}
		loaded[fileName] = true
	}

	for fileName := range fileMap {
		if !loaded[fileName] {
			log.Warn().Str("file", fileName).Msg("GTFS file missing from archive, treating as empty")
		}
	}

	log.Info().
		Int("stops", len(gtfs.Stops)).
		Int("routes", len(gtfs.Routes)).
		Int("trips", len(gtfs.Trips)).
		Int("stoptimes", len(gtfs.StopTimes)).
		Int("calendars", len(gtfs.Calendars)).
		Int("calendardates", len(gtfs.CalendarDates)).
		Msg("Parsed GTFS schedule")

	return nil
}

func decodeTable[T record](file *zip.File, destination *[]T) error {
	fileReader, err := file.Open()
	if err != nil {
		return err
	}
	defer fileReader.Close()

	body, err := io.ReadAll(fileReader)
	if err != nil {
		return err
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	// Allow us to ignore those naughty records that have missing columns
	csvReader := csv.NewReader(bytes.NewReader(body))
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	var rows []T
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			log.Warn().Str("file", file.Name).Msg("GTFS file is empty")
			*destination = nil
			return nil
		}
		return err
	}

	valid := make([]T, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			log.Warn().Str("file", file.Name).Str("id", row.Identifier()).Err(err).Msg("Dropping invalid row")
			continue
		}
		valid = append(valid, row)
	}
	*destination = valid

	return nil
}
