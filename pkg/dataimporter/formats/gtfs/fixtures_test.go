package gtfs

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()

	buffer := &bytes.Buffer{}
	writer := zip.NewWriter(buffer)
	for name, contents := range files {
		fileWriter, err := writer.Create(name)
		require.NoError(t, err)

		_, err = fileWriter.Write([]byte(strings.TrimLeft(contents, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buffer
}

func parseArchive(t *testing.T, files map[string]string) *Schedule {
	t.Helper()

	schedule := &Schedule{}
	require.NoError(t, schedule.ParseFile(buildArchive(t, files)))

	return schedule
}
