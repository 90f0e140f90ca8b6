package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/visitors"
	"github.com/light-bringer/procat-changeset/internal/app/product/domain"
)

func runCommand(t *testing.T, args ...string) (report, error) {
	t.Helper()
	return runWithDB(t, filepath.Join(t.TempDir(), "catalog.db"), args...)
}

func runWithDB(t *testing.T, dbPath string, args ...string) (report, error) {
	t.Helper()

	t.Setenv("CHANGES_DATABASE_PATH", dbPath)
	t.Setenv("CHANGES_LOGGING_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})

	var doc report
	if err := cmd.Execute(); err != nil {
		return doc, err
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	return doc, nil
}

func findChange(changes []visitors.Change, path string, pick func(visitors.Change) bool) (visitors.Change, bool) {
	for _, c := range changes {
		if c.Path() == path && pick(c) {
			return c, true
		}
	}
	return visitors.Change{}, false
}

func anyChange(visitors.Change) bool { return true }

func TestChangeReport_Edits(t *testing.T) {
	doc, err := runCommand(t,
		"--name", "Floor lamp",
		"--price", "39.90",
		"--add-discount", "SPRING:5",
		"--drop-discounts", "WELCOME",
	)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Product)

	name, ok := findChange(doc.Changes, "Name", anyChange)
	require.True(t, ok)
	assert.Equal(t, "Desk lamp", *name.OldValue)
	assert.Equal(t, "Floor lamp", *name.NewValue)

	price, ok := findChange(doc.Changes, "Price", anyChange)
	require.True(t, ok)
	assert.Equal(t, "49.90", *price.OldValue)
	assert.Equal(t, "39.90", *price.NewValue)

	added, ok := findChange(doc.Changes, "Discounts.Code", func(c visitors.Change) bool { return c.OldValue == nil })
	require.True(t, ok)
	assert.Equal(t, "SPRING", *added.NewValue)

	dropped, ok := findChange(doc.Changes, "Discounts.Code", func(c visitors.Change) bool { return c.NewValue == nil })
	require.True(t, ok)
	assert.Equal(t, "WELCOME", *dropped.OldValue)

	history, ok := findChange(doc.Changes, "PriceHistory.NewPrice", anyChange)
	require.True(t, ok)
	assert.Nil(t, history.OldValue)
	assert.Equal(t, "39.90", *history.NewValue)
}

func TestChangeReport_NoEdits(t *testing.T) {
	doc, err := runCommand(t)
	require.NoError(t, err)
	assert.Empty(t, doc.Changes)
}

func TestChangeReport_Commit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	doc, err := runWithDB(t, dbPath, "--name", "Floor lamp", "--drop-discounts", "WELCOME", "--commit")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Changes)
	product := doc.Product

	// Later runs start from the saved state
	doc, err = runWithDB(t, dbPath, "--name", "Floor lamp", "--drop-discounts", "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, product, doc.Product)
	assert.Empty(t, doc.Changes)

	// Without --commit nothing is saved
	_, err = runWithDB(t, dbPath, "--name", "Desk lamp")
	require.NoError(t, err)
	doc, err = runWithDB(t, dbPath, "--name", "Desk lamp")
	require.NoError(t, err)
	_, ok := findChange(doc.Changes, "Name", anyChange)
	assert.True(t, ok)
}

func TestChangeReport_InvalidFlags(t *testing.T) {
	_, err := runCommand(t, "--price", "free")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = runCommand(t, "--add-discount", "SPRING")
	assert.Error(t, err)

	_, err = runCommand(t, "--product", "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestParseDiscount(t *testing.T) {
	discount, err := parseDiscount(" SPRING : 12.5% ")
	require.NoError(t, err)
	assert.Equal(t, "SPRING", discount.Code)
	assert.Equal(t, 12.5, discount.Percent)

	_, err = parseDiscount("SPRING:lots")
	assert.ErrorIs(t, err, domain.ErrInvalidDiscountPercent)
}
