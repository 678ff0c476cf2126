package gtfs

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

type SequenceEntry struct {
	StopID   string
	Sequence int

	Arrival   time.Duration
	Departure time.Duration

	ArrivalText   string
	DepartureText string
}

// BuildTripSequences groups stop_times by trip, ordered by stop_sequence ascending.
// A missing arrival or departure falls back to the other, rows with unusable values are dropped.
func BuildTripSequences(stopTimes []StopTime) map[string][]SequenceEntry {
	sequences := map[string][]SequenceEntry{}
	dropped := 0

	for _, stopTime := range stopTimes {
		sequence, err := stopTime.Sequence()
		if err != nil {
			dropped += 1
			continue
		}

		arrivalText := stopTime.ArrivalTime
		departureText := stopTime.DepartureTime
		if arrivalText == "" {
			arrivalText = departureText
		}
		if departureText == "" {
			departureText = arrivalText
		}

		arrival, err := ParseTime(arrivalText)
		if err != nil {
			dropped += 1
			continue
		}
		departure, err := ParseTime(departureText)
		if err != nil {
			dropped += 1
			continue
		}

		sequences[stopTime.TripID] = append(sequences[stopTime.TripID], SequenceEntry{
			StopID:        stopTime.StopID,
			Sequence:      sequence,
			Arrival:       arrival,
			Departure:     departure,
			ArrivalText:   arrivalText,
			DepartureText: departureText,
		})
	}

	for _, entries := range sequences {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Sequence < entries[j].Sequence
		})
	}

	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped stop_times with unusable sequence or times")
	}

	return sequences
}
