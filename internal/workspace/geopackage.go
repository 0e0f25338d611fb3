package workspace

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// geoPackage reads the OGC GeoPackage system tables
type geoPackage struct{}

// GeoPackageDSN builds a read-only SQLite DSN for a GeoPackage file
func GeoPackageDSN(path string) string {
	params := url.Values{}
	params.Set("mode", "ro")
	params.Set("_query_only", "true")
	params.Set("_busy_timeout", "5000")

	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(filepath.ToSlash(path))
	return "file:" + escaped + "?" + params.Encode()
}

func openGeoPackage(path string, logger *logrus.Logger) (*Workspace, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: workspace %s is not accessible: %v", models.ErrConfiguration, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: workspace %s is a directory, expected a GeoPackage file", models.ErrConfiguration, path)
	}

	db := connector.NewDatabaseConnector(connector.DriverSQLite, GeoPackageDSN(path), filepath.Base(path), logger)
	if err := connect(db); err != nil {
		return nil, err
	}

	// A GeoPackage always carries gpkg_contents
	rows, err := db.ExecuteQuery(`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = 'gpkg_contents'`)
	if err != nil || len(rows) == 0 {
		db.Disconnect()
		if err == nil {
			err = fmt.Errorf("gpkg_contents table not found")
		}
		return nil, fmt.Errorf("%w: %s is not a GeoPackage: %v", models.ErrDatastoreUnavailable, path, err)
	}

	return &Workspace{
		Kind:     KindGeoPackage,
		Location: path,
		DB:       db,
		Logger:   logger,
		dialect:  geoPackage{},
	}, nil
}

func (geoPackage) featureClasses(db *connector.DatabaseConnector) ([]featureClassInfo, error) {
	query := `
		SELECT
			c.table_name AS table_name,
			g.geometry_type_name AS geometry_type
		FROM gpkg_contents c
		LEFT JOIN gpkg_geometry_columns g ON g.table_name = c.table_name
		WHERE c.data_type = 'features'
		ORDER BY c.table_name
	`
	result, err := db.ExecuteQuery(query)
	if err != nil {
		return nil, fmt.Errorf("listing GeoPackage feature classes: %w", err)
	}

	infos := make([]featureClassInfo, 0, len(result))
	for _, row := range result {
		infos = append(infos, featureClassInfo{
			Name:      connector.AsString(row["table_name"]),
			ShapeType: ShapeType(connector.AsString(row["geometry_type"])),
		})
	}
	return infos, nil
}

func (geoPackage) fields(db *connector.DatabaseConnector, featureClass string) ([]models.Field, error) {
	geomResult, err := db.ExecuteQuery(`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, featureClass)
	if err != nil {
		return nil, fmt.Errorf("reading geometry column of %s: %w", featureClass, err)
	}
	geometryColumn := ""
	if len(geomResult) > 0 {
		geometryColumn = connector.AsString(geomResult[0]["column_name"])
	}

	columnsQuery := `
		SELECT name, type, pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`
	columnsResult, err := db.ExecuteQuery(columnsQuery, featureClass)
	if err != nil {
		return nil, fmt.Errorf("listing fields of %s: %w", featureClass, err)
	}

	// Only a single-column INTEGER PRIMARY KEY aliases the rowid
	pkColumns := 0
	for _, row := range columnsResult {
		if pk, _ := connector.AsInt64(row["pk"]); pk > 0 {
			pkColumns++
		}
	}

	fields := make([]models.Field, 0, len(columnsResult))
	for _, row := range columnsResult {
		name := connector.AsString(row["name"])
		native := connector.AsString(row["type"])
		pk, _ := connector.AsInt64(row["pk"])

		field := models.Field{Name: name, NativeType: native}
		switch {
		case strings.EqualFold(name, geometryColumn):
			field.Type, field.Length = TypeGeometry, 0
		case pk > 0 && pkColumns == 1 && strings.EqualFold(strings.TrimSpace(native), "INTEGER"):
			field.Type, field.Length = TypeOID, 4
		default:
			field.Type, field.Length = MapSQLType(native, 0)
		}
		fields = append(fields, field)
	}
	return fields, nil
}
