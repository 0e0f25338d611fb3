package workspace

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

const applicationName = "gdb-field-catalog"

// postGIS reads a PostGIS schema through geometry_columns and information_schema
type postGIS struct {
	schema string
}

// PostGISConnString prepares a postgres:// workspace URL for pgx.
// The schema query parameter selects the schema to enumerate and is removed;
// without it the first search_path entry is used, then public.
// Every session is forced read-only.
func PostGISConnString(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid PostGIS workspace URL: %v", models.ErrConfiguration, err)
	}
	if strings.TrimPrefix(u.Path, "/") == "" {
		return "", "", fmt.Errorf("%w: database name must be provided in the PostGIS workspace URL", models.ErrConfiguration)
	}

	query := u.Query()
	schema := query.Get("schema")
	if schema == "" {
		schema = firstSearchPathSchema(query.Get("search_path"))
	}
	if schema == "" {
		schema = "public"
	}
	query.Del("schema")

	if query.Get("application_name") == "" {
		query.Set("application_name", applicationName)
	}
	query.Set("default_transaction_read_only", "on")

	u.RawQuery = query.Encode()
	return u.String(), schema, nil
}

// firstSearchPathSchema returns the first named schema of a search_path value,
// skipping "$user"
func firstSearchPathSchema(searchPath string) string {
	for _, entry := range strings.Split(searchPath, ",") {
		entry = strings.Trim(strings.TrimSpace(entry), `"`)
		if entry == "" || entry == "$user" {
			continue
		}
		return entry
	}
	return ""
}

func openPostGIS(location string, logger *logrus.Logger) (*Workspace, error) {
	connStr, schema, err := PostGISConnString(location)
	if err != nil {
		return nil, err
	}

	u, _ := url.Parse(connStr)
	name := strings.TrimPrefix(u.Path, "/") + "." + schema

	db := connector.NewDatabaseConnector(connector.DriverPgx, connStr, name, logger)
	if err := connect(db); err != nil {
		return nil, err
	}

	return &Workspace{
		Kind:     KindPostGIS,
		Location: location,
		DB:       db,
		Logger:   logger,
		dialect:  postGIS{schema: schema},
	}, nil
}

func (p postGIS) featureClasses(db *connector.DatabaseConnector) ([]featureClassInfo, error) {
	query := `
		SELECT
			f_table_name AS table_name,
			MIN(type) AS geometry_type
		FROM geometry_columns
		WHERE f_table_schema = $1
		GROUP BY f_table_name
		ORDER BY f_table_name
	`
	result, err := db.ExecuteQuery(query, p.schema)
	if err != nil {
		return nil, fmt.Errorf("listing PostGIS feature classes: %w", err)
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

func (p postGIS) fields(db *connector.DatabaseConnector, featureClass string) ([]models.Field, error) {
	columnsQuery := `
		SELECT
			c.column_name,
			c.udt_name,
			c.character_maximum_length,
			c.column_default,
			c.is_identity,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_schema = tc.constraint_schema
				AND kcu.constraint_name = tc.constraint_name
				WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = c.table_schema
				AND tc.table_name = c.table_name
				AND kcu.column_name = c.column_name
			) AS is_primary
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		AND c.table_name = $2
		ORDER BY c.ordinal_position
	`
	columnsResult, err := db.ExecuteQuery(columnsQuery, p.schema, featureClass)
	if err != nil {
		return nil, fmt.Errorf("listing fields of %s: %w", featureClass, err)
	}

	fields := make([]models.Field, 0, len(columnsResult))
	for _, row := range columnsResult {
		udtName := connector.AsString(row["udt_name"])
		maxLength, _ := connector.AsInt64(row["character_maximum_length"])
		generated := strings.HasPrefix(connector.AsString(row["column_default"]), "nextval(") ||
			connector.AsString(row["is_identity"]) == "YES"
		isPrimary, _ := row["is_primary"].(bool)

		field := models.Field{
			Name:       connector.AsString(row["column_name"]),
			NativeType: udtName,
		}
		if isPrimary && generated && IsIntegerType(udtName) {
			field.Type, field.Length = TypeOID, 4
		} else {
			field.Type, field.Length = MapSQLType(udtName, maxLength)
		}
		fields = append(fields, field)
	}
	return fields, nil
}
