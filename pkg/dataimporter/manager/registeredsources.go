package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"gopkg.in/yaml.v3"
)

const DefaultDataSourcesPath = "data/datasources/"

var ErrDatasetNotFound = errors.New("dataset could not be found")

// GetRegisteredDataSets loads every data source yaml file under path
func GetRegisteredDataSets(path string) ([]datasets.DataSet, error) {
	var registeredDatasets []datasets.DataSet

	err := filepath.Walk(path,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() || filepath.Ext(path) != ".yaml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading data source file")

			sourceYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(sourceYaml))

			for {
				var datasource datasets.DataSource
				if err := decoder.Decode(&datasource); err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return fmt.Errorf("decode %s: %w", path, err)
				}

				for _, dataset := range datasource.Datasets {
					dataset.Identifier = fmt.Sprintf("%s-%s", datasource.Identifier, dataset.Identifier)
					dataset.DataSourceRef = datasource.Identifier
					dataset.Provider = datasource.Provider
					if datasource.SourceAuthentication != nil && dataset.SourceAuthentication.Query == nil && dataset.SourceAuthentication.Header == nil {
						dataset.SourceAuthentication = *datasource.SourceAuthentication
					}

					if err := dataset.Validate(); err != nil {
						return err
					}

					registeredDatasets = append(registeredDatasets, dataset)
				}
			}

			return nil
		})
	if err != nil {
		return nil, err
	}

	return registeredDatasets, nil
}

func GetDataset(path string, identifier string) (datasets.DataSet, error) {
	registered, err := GetRegisteredDataSets(path)
	if err != nil {
		return datasets.DataSet{}, err
	}

	for _, dataset := range registered {
		if dataset.Identifier == identifier {
			return dataset, nil
		}
	}

	return datasets.DataSet{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, identifier)
}

// GetDatasetForMode returns the first registered dataset of a mode
func GetDatasetForMode(registered []datasets.DataSet, mode string) (datasets.DataSet, error) {
	for _, dataset := range registered {
		if string(dataset.Mode) == mode {
			return dataset, nil
		}
	}

	return datasets.DataSet{}, fmt.Errorf("%w: mode %s", ErrDatasetNotFound, mode)
}
