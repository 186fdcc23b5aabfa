package controllers

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadImportFilesRecordsUnreadableParts(t *testing.T) {
	// A header with no backing content or temp file cannot be opened.
	headers := []*multipart.FileHeader{{Filename: "bens.json"}}

	files, failed := readImportFiles(headers)

	assert.Empty(t, files)
	require.Len(t, failed, 1)
	assert.Equal(t, "bens.json", failed[0].FileName)
	assert.Equal(t, "error", failed[0].Status)
	assert.Contains(t, failed[0].Message, "Failed to read file")
}
