package sample

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestBuildWritesGeoPackageTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcels.gpkg")
	classes := []models.FeatureClass{{
		Name:      "Parcels",
		ShapeType: workspace.ShapePolygon,
		Fields: []models.Field{
			{Name: "OBJECTID", Type: workspace.TypeOID, Length: 4},
			{Name: "SHAPE", Type: workspace.TypeGeometry},
			{Name: "OWNER", Type: workspace.TypeString, Length: 80},
		},
	}}

	require.NoError(t, NewBuilder(path, quietLogger()).Build(classes, 250))

	db := connector.NewDatabaseConnector(connector.DriverSQLite, path, "parcels", quietLogger())
	defer db.Disconnect()

	contents, err := db.ExecuteQuery(`SELECT table_name, data_type, srs_id FROM gpkg_contents`)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "Parcels", connector.AsString(contents[0]["table_name"]))
	assert.Equal(t, "features", connector.AsString(contents[0]["data_type"]))

	geom, err := db.ExecuteQuery(`SELECT column_name, geometry_type_name FROM gpkg_geometry_columns`)
	require.NoError(t, err)
	require.Len(t, geom, 1)
	assert.Equal(t, "SHAPE", connector.AsString(geom[0]["column_name"]))
	assert.Equal(t, "MULTIPOLYGON", connector.AsString(geom[0]["geometry_type_name"]))

	count, err := db.ExecuteQuery(`SELECT COUNT(*) AS count FROM "Parcels"`)
	require.NoError(t, err)
	n, ok := connector.AsInt64(count[0]["count"])
	require.True(t, ok)
	assert.Equal(t, int64(250), n)

	appID, err := db.ExecuteQuery(`PRAGMA application_id`)
	require.NoError(t, err)
	id, _ := connector.AsInt64(appID[0]["application_id"])
	assert.Equal(t, int64(gpkgApplicationID), id)
}

func TestBuildReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replace.gpkg")
	builder := NewBuilder(path, quietLogger())

	require.NoError(t, builder.Build(builder.DataGenerator.RandomClasses(4), 0))
	require.NoError(t, builder.Build(builder.DataGenerator.RandomClasses(2), 0))

	ws, err := workspace.Open(path, quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	names, err := ws.ListFeatureClasses(models.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestRandomClasses(t *testing.T) {
	classes := NewDataGenerator().RandomClasses(8)
	require.Len(t, classes, 8)

	seen := make(map[string]bool)
	for _, fc := range classes {
		assert.False(t, seen[fc.Name], "duplicate name %s", fc.Name)
		seen[fc.Name] = true

		assert.NotEmpty(t, fc.ShapeType)
		require.GreaterOrEqual(t, len(fc.Fields), 4)
		assert.LessOrEqual(t, len(fc.Fields), 8)
		assert.Equal(t, workspace.TypeOID, fc.Fields[0].Type)
		assert.Equal(t, workspace.TypeGeometry, fc.Fields[1].Type)
	}
}

func TestRandomClassesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random.gpkg")
	builder := NewBuilder(path, quietLogger())
	classes := builder.DataGenerator.RandomClasses(3)
	require.NoError(t, builder.Build(classes, 3))

	ws, err := workspace.Open(path, quietLogger())
	require.NoError(t, err)
	defer ws.Close()

	for _, fc := range classes {
		fields, err := ws.ListFields(fc.Name)
		require.NoError(t, err)
		require.Len(t, fields, len(fc.Fields))

		for i, want := range fc.Fields {
			assert.Equal(t, want.Name, fields[i].Name)
			// GUIDs are stored as TEXT(38) in a GeoPackage
			if want.Type == workspace.TypeGUID {
				assert.Equal(t, workspace.TypeString, fields[i].Type)
				assert.Equal(t, int64(38), fields[i].Length)
				continue
			}
			assert.Equal(t, want.Type, fields[i].Type, "%s.%s", fc.Name, want.Name)
			assert.Equal(t, want.Length, fields[i].Length, "%s.%s", fc.Name, want.Name)
		}
	}
}

func TestGenerateValue(t *testing.T) {
	dg := NewDataGenerator()

	zip := dg.GenerateValue(models.Field{Name: "ZIP", Type: workspace.TypeString, Length: 3})
	s, ok := zip.(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(s), 3)

	_, ok = dg.GenerateValue(models.Field{Name: "LANES", Type: workspace.TypeSmallInteger}).(int16)
	assert.True(t, ok)

	guid, ok := dg.GenerateValue(models.Field{Name: "GLOBALID", Type: workspace.TypeGUID}).(string)
	require.True(t, ok)
	assert.Len(t, guid, 38)

	assert.Nil(t, dg.GenerateValue(models.Field{Name: "SHAPE", Type: workspace.TypeGeometry}))
}
