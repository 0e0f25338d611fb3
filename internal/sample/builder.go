// Package sample writes small GeoPackage workspaces for demos and tests.
package sample

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

const (
	// GeoPackage application_id ("GPKG") and user_version for 1.3
	gpkgApplicationID = 1196444487
	gpkgUserVersion   = 10300

	defaultSRSID = 4326
	batchSize    = 100
)

var coreTables = []string{
	`CREATE TABLE gpkg_spatial_ref_sys (
		srs_name TEXT NOT NULL,
		srs_id INTEGER NOT NULL PRIMARY KEY,
		organization TEXT NOT NULL,
		organization_coordsys_id INTEGER NOT NULL,
		definition TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE gpkg_contents (
		table_name TEXT NOT NULL PRIMARY KEY,
		data_type TEXT NOT NULL,
		identifier TEXT UNIQUE,
		description TEXT DEFAULT '',
		last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		min_x DOUBLE,
		min_y DOUBLE,
		max_x DOUBLE,
		max_y DOUBLE,
		srs_id INTEGER,
		CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
	)`,
	`CREATE TABLE gpkg_geometry_columns (
		table_name TEXT NOT NULL,
		column_name TEXT NOT NULL,
		geometry_type_name TEXT NOT NULL,
		srs_id INTEGER NOT NULL,
		z TINYINT NOT NULL,
		m TINYINT NOT NULL,
		CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name),
		CONSTRAINT fk_gc_tn FOREIGN KEY (table_name) REFERENCES gpkg_contents(table_name),
		CONSTRAINT fk_gc_srs FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
	)`,
}

var spatialRefSys = [][]interface{}{
	{"Undefined cartesian SRS", -1, "NONE", -1, "undefined", "undefined cartesian coordinate reference system"},
	{"Undefined geographic SRS", 0, "NONE", 0, "undefined", "undefined geographic coordinate reference system"},
	{"WGS 84 geodetic", 4326, "EPSG", 4326,
		`GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]]`,
		"longitude/latitude coordinates in decimal degrees on the WGS 84 spheroid"},
}

// Builder writes a GeoPackage holding the given feature classes
type Builder struct {
	Path          string
	DB            *connector.DatabaseConnector
	DataGenerator *DataGenerator
	Logger        *logrus.Logger
}

// NewBuilder creates a builder for a GeoPackage at path
func NewBuilder(path string, logger *logrus.Logger) *Builder {
	return &Builder{
		Path:          path,
		DB:            connector.NewDatabaseConnector(connector.DriverSQLite, path, path, logger),
		DataGenerator: NewDataGenerator(),
		Logger:        logger,
	}
}

// Build replaces any file at the builder's path with a GeoPackage containing
// classes, each filled with records rows of generated attribute data
func (b *Builder) Build(classes []models.FeatureClass, records int) error {
	if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing %s: %w", b.Path, err)
	}

	if err := b.DB.Connect(); err != nil {
		return err
	}
	defer b.DB.Disconnect()

	if err := b.createCoreTables(); err != nil {
		return err
	}

	for _, fc := range classes {
		if err := b.createFeatureClass(fc); err != nil {
			return fmt.Errorf("creating feature class %s: %w", fc.Name, err)
		}
		if err := b.populateFeatureClass(fc, records); err != nil {
			return fmt.Errorf("populating feature class %s: %w", fc.Name, err)
		}
	}

	b.Logger.Infof("Wrote sample GeoPackage %s with %d feature classes", b.Path, len(classes))
	return nil
}

func (b *Builder) createCoreTables() error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA application_id = %d", gpkgApplicationID),
		fmt.Sprintf("PRAGMA user_version = %d", gpkgUserVersion),
	}
	for _, stmt := range append(pragmas, coreTables...) {
		if _, err := b.DB.ExecuteStatement(stmt); err != nil {
			return err
		}
	}

	_, err := b.DB.ExecuteMany(`
		INSERT INTO gpkg_spatial_ref_sys
			(srs_name, srs_id, organization, organization_coordsys_id, definition, description)
		VALUES (?, ?, ?, ?, ?, ?)`, spatialRefSys)
	return err
}

func (b *Builder) createFeatureClass(fc models.FeatureClass) error {
	var columns []string
	geometryColumn := ""
	geometryType := geometryTypeName(fc.ShapeType)

	for _, field := range fc.Fields {
		declared := declaredType(field)
		switch field.Type {
		case workspace.TypeOID:
			declared = "INTEGER PRIMARY KEY AUTOINCREMENT"
		case workspace.TypeGeometry:
			geometryColumn = field.Name
			declared = geometryType
		}
		columns = append(columns, quoteIdent(field.Name)+" "+declared)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(fc.Name), strings.Join(columns, ", "))
	if _, err := b.DB.ExecuteStatement(ddl); err != nil {
		return err
	}

	if _, err := b.DB.ExecuteStatement(
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, srs_id) VALUES (?, 'features', ?, ?)`,
		fc.Name, fc.Name, defaultSRSID,
	); err != nil {
		return err
	}

	if geometryColumn == "" {
		return nil
	}
	_, err := b.DB.ExecuteStatement(
		`INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m) VALUES (?, ?, ?, ?, 0, 0)`,
		fc.Name, geometryColumn, geometryType, defaultSRSID,
	)
	return err
}

// populateFeatureClass inserts generated attribute rows; geometries stay empty
func (b *Builder) populateFeatureClass(fc models.FeatureClass, records int) error {
	var columnNames []string
	var placeholders []string
	var attributes []models.Field

	for _, field := range fc.Fields {
		if field.Type == workspace.TypeOID || field.Type == workspace.TypeGeometry {
			continue
		}
		columnNames = append(columnNames, quoteIdent(field.Name))
		placeholders = append(placeholders, "?")
		attributes = append(attributes, field)
	}

	if records <= 0 || len(attributes) == 0 {
		return nil
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(fc.Name),
		strings.Join(columnNames, ", "),
		strings.Join(placeholders, ", "),
	)

	var paramsList [][]interface{}
	for i := 0; i < records; i++ {
		params := make([]interface{}, len(attributes))
		for j, field := range attributes {
			params[j] = b.DataGenerator.GenerateValue(field)
		}
		paramsList = append(paramsList, params)

		// Insert in batches
		if len(paramsList) >= batchSize || i == records-1 {
			if _, err := b.DB.ExecuteMany(insertSQL, paramsList); err != nil {
				return err
			}
			paramsList = nil
		}
	}

	b.Logger.Debugf("Inserted %d rows into %s", records, fc.Name)
	return nil
}

// declaredType picks the GeoPackage column type for a field
func declaredType(field models.Field) string {
	if field.NativeType != "" {
		return field.NativeType
	}

	switch field.Type {
	case workspace.TypeString:
		if field.Length > 0 {
			return fmt.Sprintf("TEXT(%d)", field.Length)
		}
		return "TEXT"
	case workspace.TypeInteger:
		return "MEDIUMINT"
	case workspace.TypeSmallInteger:
		return "SMALLINT"
	case workspace.TypeBigInteger:
		return "BIGINT"
	case workspace.TypeDouble:
		return "DOUBLE"
	case workspace.TypeSingle:
		return "FLOAT"
	case workspace.TypeDate:
		return "DATETIME"
	case workspace.TypeBlob:
		return "BLOB"
	case workspace.TypeGUID:
		return "TEXT(38)"
	}
	return "TEXT"
}

// geometryTypeName is the GeoPackage geometry type for a shape type
func geometryTypeName(shapeType string) string {
	switch shapeType {
	case workspace.ShapePoint:
		return "POINT"
	case workspace.ShapeMultipoint:
		return "MULTIPOINT"
	case workspace.ShapePolyline:
		return "MULTILINESTRING"
	case workspace.ShapePolygon:
		return "MULTIPOLYGON"
	}
	return "GEOMETRY"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
