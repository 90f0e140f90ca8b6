package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
	"github.com/light-bringer/procat-changeset/internal/config"
)

func TestNewServiceOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "catalog.db")

	opts, err := NewServiceOptions(cfg, nil)
	require.NoError(t, err)
	defer opts.Close()

	productID, err := opts.SeedCatalog.Execute(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, productID)

	again, err := opts.SeedCatalog.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, productID, again)
}

func TestOpenDatabase_InvalidPath(t *testing.T) {
	_, err := OpenDatabase(filepath.Join(t.TempDir(), "missing", "catalog.db"))
	assert.Error(t, err)
}

func TestFormatOptions(t *testing.T) {
	report := config.Default().Report
	report.DateFormats.Date = "02/01/2006"
	report.FloatPrecision = 0

	options := FormatOptions(report)
	assert.Equal(t, "02/01/2006", options.DateLayouts[domain.TemporalDate])
	assert.Equal(t, "15:04:05", options.DateLayouts[domain.TemporalTime])
	assert.Equal(t, "Checked", options.BooleanLabels.Checked)
	assert.Equal(t, 0, options.FloatPrecision)
}
