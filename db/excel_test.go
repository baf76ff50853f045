package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"menu-admin-go/models"
)

func TestExportThenImport(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	_, err := SeedIfEmpty(ctx, src)
	require.NoError(t, err)
	items, err := src.ListMenuItems(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportMenuItemsToExcel(items, &buf))

	dst := NewMemoryStore()
	n, err := ImportMenuItemsFromExcel(ctx, dst, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := dst.ListMenuItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestImportSkipsIncompleteRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "diningCommonsCode", "station"},
		{"Buffalo Wings", "ortega", "Grill"},
		{"", "ortega", "Grill"},
		{"Pho", "carrillo"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	store := NewMemoryStore()
	n, err := ImportMenuItemsFromExcel(context.Background(), store, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetMenuItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MenuItem{ID: 1, Name: "Buffalo Wings", DiningCommonsCode: "ortega", Station: "Grill"}, *got)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := ImportMenuItemsFromExcel(context.Background(), NewMemoryStore(), bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}
