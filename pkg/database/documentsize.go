package database

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
)

// MaxDocumentSize is the largest BSON document MongoDB accepts
const MaxDocumentSize = 16 * 1024 * 1024

const documentSizeWarning = MaxDocumentSize * 3 / 4

var ErrDocumentTooLarge = errors.New("origin dataset exceeds the document size limit")

// DocumentSize returns the encoded BSON size of an origin dataset
func DocumentSize(dataset *ctdf.OriginDataset) (int, error) {
	raw, err := bson.Marshal(dataset)
	if err != nil {
		return 0, fmt.Errorf("marshal origin dataset %s: %w", dataset.PrimaryIdentifier, err)
	}

	return len(raw), nil
}

// LargestDocument returns the origin dataset with the biggest encoded size
func LargestDocument(datasets []*ctdf.OriginDataset) (*ctdf.OriginDataset, int, error) {
	var largest *ctdf.OriginDataset
	largestSize := 0

	for _, dataset := range datasets {
		size, err := DocumentSize(dataset)
		if err != nil {
			return nil, 0, err
		}
		if largest == nil || size > largestSize {
			largest = dataset
			largestSize = size
		}
	}

	return largest, largestSize, nil
}

// checkDocumentSizes fails before anything is written if any dataset cannot be stored
func checkDocumentSizes(mode ctdf.TransportType, datasets []*ctdf.OriginDataset) error {
	for _, dataset := range datasets {
		size, err := DocumentSize(dataset)
		if err != nil {
			return err
		}

		if size > MaxDocumentSize {
			return fmt.Errorf("%w: %s is %d bytes", ErrDocumentTooLarge, dataset.PrimaryIdentifier, size)
		}
		if size > documentSizeWarning {
			log.Warn().
				Str("mode", string(mode)).
				Str("origin", dataset.PrimaryIdentifier).
				Int("bytes", size).
				Msg("Origin dataset is close to the document size limit")
		}
	}

	return nil
}
