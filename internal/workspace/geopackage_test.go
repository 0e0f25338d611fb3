package workspace_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/gdb-field-catalog/internal/sample"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

// buildCoastalWorkspace writes a GeoPackage with three feature classes
func buildCoastalWorkspace(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coastal_tx_parcels.gpkg")
	classes := []models.FeatureClass{
		{
			Name:      "Parcels",
			ShapeType: workspace.ShapePolygon,
			Fields: []models.Field{
				{Name: "OBJECTID", Type: workspace.TypeOID},
				{Name: "SHAPE", Type: workspace.TypeGeometry},
				{Name: "OWNER", Type: workspace.TypeString, Length: 80},
				{Name: "ACRES", Type: workspace.TypeDouble},
			},
		},
		{
			Name:      "Address_Points",
			ShapeType: workspace.ShapePoint,
			Fields: []models.Field{
				{Name: "OBJECTID", Type: workspace.TypeOID},
				{Name: "SHAPE", Type: workspace.TypeGeometry},
				{Name: "ZIP", Type: workspace.TypeString, Length: 10},
				{Name: "UNITS", Type: workspace.TypeSmallInteger},
			},
		},
		{
			Name:      "Roads",
			ShapeType: workspace.ShapePolyline,
			Fields: []models.Field{
				{Name: "fid", Type: workspace.TypeOID},
				{Name: "geom", Type: workspace.TypeGeometry},
				{Name: "NOTES", Type: workspace.TypeString},
				{Name: "BUILT", Type: workspace.TypeDate},
				{Name: "SPEED", Type: workspace.TypeInteger},
			},
		},
	}

	require.NoError(t, sample.NewBuilder(path, quietLogger()).Build(classes, 5))
	return path
}

func TestGeoPackageListFeatureClasses(t *testing.T) {
	ws, err := workspace.Open(buildCoastalWorkspace(t), quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	assert.Equal(t, workspace.KindGeoPackage, ws.Kind)

	names, err := ws.ListFeatureClasses(models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Address_Points", "Parcels", "Roads"}, names)

	names, err = ws.ListFeatureClasses(models.ListOptions{Wildcard: "*s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Address_Points", "Parcels", "Roads"}, names)

	names, err = ws.ListFeatureClasses(models.ListOptions{Wildcard: "par*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Parcels"}, names)

	names, err = ws.ListFeatureClasses(models.ListOptions{FeatureType: "Polyline"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Roads"}, names)

	_, err = ws.ListFeatureClasses(models.ListOptions{FeatureType: "Annotation"})
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestGeoPackageListFields(t *testing.T) {
	ws, err := workspace.Open(buildCoastalWorkspace(t), quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	fields, err := ws.ListFields("Roads")
	require.NoError(t, err)

	type entry struct {
		Name   string
		Type   string
		Length int64
	}
	var got []entry
	for _, f := range fields {
		got = append(got, entry{f.Name, f.Type, f.Length})
	}

	assert.Equal(t, []entry{
		{"fid", workspace.TypeOID, 4},
		{"geom", workspace.TypeGeometry, 0},
		{"NOTES", workspace.TypeString, 0},
		{"BUILT", workspace.TypeDate, 8},
		{"SPEED", workspace.TypeInteger, 4},
	}, got)
	assert.Equal(t, "MEDIUMINT", fields[4].NativeType)

	_, err = ws.ListFields("Missing")
	assert.Error(t, err)
}

func TestGeoPackageDescribe(t *testing.T) {
	ws, err := workspace.Open(buildCoastalWorkspace(t), quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	classes, err := ws.Describe(models.ListOptions{})
	require.NoError(t, err)
	require.Len(t, classes, 3)

	assert.Equal(t, "Parcels", classes[1].Name)
	assert.Equal(t, workspace.ShapePolygon, classes[1].ShapeType)
	require.Len(t, classes[1].Fields, 4)
	assert.Equal(t, models.Field{Name: "OWNER", Type: workspace.TypeString, Length: 80, NativeType: "TEXT(80)"}, classes[1].Fields[2])
}

func TestGeoPackageIsOpenedReadOnly(t *testing.T) {
	ws, err := workspace.Open(buildCoastalWorkspace(t), quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	_, err = ws.DB.ExecuteStatement(`DELETE FROM gpkg_contents`)
	assert.Error(t, err)
}

func TestGeoPackageMissingFile(t *testing.T) {
	_, err := workspace.Open(filepath.Join(t.TempDir(), "nope.gpkg"), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestGeoPackageDirectory(t *testing.T) {
	_, err := workspace.Open(t.TempDir(), quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestGeoPackageNotAGeoPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.gpkg")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database file, just some text padding it out"), 0o644))

	_, err := workspace.Open(path, quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDatastoreUnavailable))
}
