package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadscore-cli/internal/model"
)

func sampleResults() []model.ScoreResult {
	return []model.ScoreResult{
		{
			Company:   "Chaayos",
			Score:     87.25,
			FitLabel:  model.FitExcellent,
			Breakdown: model.Breakdown{Industry: 38, Keywords: 20.4, Total: 87.25},
			Reasons:   []string{"Strong industry alignment (Food & Beverage)", "Actively hiring"},
		},
		{
			Company:  "GenericTech",
			Score:    38.5,
			FitLabel: model.FitLow,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleResults()))

	var decoded []model.ScoreResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Chaayos", decoded[0].Company)
	assert.InDelta(t, 87.25, decoded[0].Score, 0.001)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Chaayos")
	assert.Contains(t, out, "87.25")
	assert.Contains(t, out, model.FitExcellent)
	assert.Contains(t, out, "Strong industry alignment")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, sampleResults()))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "Chaayos"}, records[1][:2])
	assert.Equal(t, "87.25", records[1][2])
	assert.Equal(t, "Strong industry alignment (Food & Beverage); Actively hiring", records[1][len(records[1])-1])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, writeXLSX(path, sampleResults()))
	assert.FileExists(t, path)
}
