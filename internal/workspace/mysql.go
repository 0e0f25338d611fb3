package workspace

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// spatialDataTypes lists the MySQL data types of spatial columns
const spatialDataTypes = `'geometry', 'point', 'linestring', 'polygon', 'multipoint',
	'multilinestring', 'multipolygon', 'geometrycollection', 'geomcollection'`

// mySQL reads a spatially enabled MySQL schema through information_schema
type mySQL struct {
	schema string
}

// MySQLDSN converts a mysql:// workspace URL into a go-sql-driver DSN.
// Missing credentials and address fall back to MYSQL_USER, MYSQL_PASSWORD,
// MYSQL_HOST and MYSQL_PORT. Sessions are opened read-only.
func MySQLDSN(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid MySQL workspace URL: %v", models.ErrConfiguration, err)
	}

	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return "", "", fmt.Errorf("%w: database name must be provided in the MySQL workspace URL", models.ErrConfiguration)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.DBName = database
	cfg.User = getEnvOrDefault("MYSQL_USER", "root")
	cfg.Passwd = os.Getenv("MYSQL_PASSWORD")
	if u.User != nil {
		cfg.User = u.User.Username()
		if password, ok := u.User.Password(); ok {
			cfg.Passwd = password
		}
	}

	host := u.Hostname()
	if host == "" {
		host = getEnvOrDefault("MYSQL_HOST", "localhost")
	}
	port := u.Port()
	if port == "" {
		port = getEnvOrDefault("MYSQL_PORT", "3306")
	}
	cfg.Addr = net.JoinHostPort(host, port)

	cfg.Params = map[string]string{"transaction_read_only": "1"}
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "tls" {
			cfg.TLSConfig = values[0]
			continue
		}
		cfg.Params[key] = values[0]
	}

	return cfg.FormatDSN(), database, nil
}

func openMySQL(location string, logger *logrus.Logger) (*Workspace, error) {
	dsn, database, err := MySQLDSN(location)
	if err != nil {
		return nil, err
	}

	db := connector.NewDatabaseConnector(connector.DriverMySQL, dsn, database, logger)
	if err := connect(db); err != nil {
		return nil, err
	}

	return &Workspace{
		Kind:     KindMySQL,
		Location: location,
		DB:       db,
		Logger:   logger,
		dialect:  mySQL{schema: database},
	}, nil
}

func (m mySQL) featureClasses(db *connector.DatabaseConnector) ([]featureClassInfo, error) {
	query := `
		SELECT
			c.table_name AS table_name,
			MIN(c.data_type) AS geometry_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		ON t.table_schema = c.table_schema
		AND t.table_name = c.table_name
		WHERE c.table_schema = ?
		AND t.table_type = 'BASE TABLE'
		AND c.data_type IN (` + spatialDataTypes + `)
		GROUP BY c.table_name
		ORDER BY c.table_name
	`
	result, err := db.ExecuteQuery(query, m.schema)
	if err != nil {
		return nil, fmt.Errorf("listing MySQL feature classes: %w", err)
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

func (m mySQL) fields(db *connector.DatabaseConnector, featureClass string) ([]models.Field, error) {
	columnsQuery := `
		SELECT
			column_name AS column_name,
			data_type AS data_type,
			column_type AS column_type,
			character_maximum_length AS character_maximum_length,
			column_key AS column_key,
			extra AS extra
		FROM information_schema.columns
		WHERE table_schema = ?
		AND table_name = ?
		ORDER BY ordinal_position
	`
	columnsResult, err := db.ExecuteQuery(columnsQuery, m.schema, featureClass)
	if err != nil {
		return nil, fmt.Errorf("listing fields of %s: %w", featureClass, err)
	}

	fields := make([]models.Field, 0, len(columnsResult))
	for _, row := range columnsResult {
		dataType := connector.AsString(row["data_type"])
		maxLength, _ := connector.AsInt64(row["character_maximum_length"])
		isKey := connector.AsString(row["column_key"]) == "PRI"
		autoIncrement := strings.Contains(strings.ToLower(connector.AsString(row["extra"])), "auto_increment")

		field := models.Field{
			Name:       connector.AsString(row["column_name"]),
			NativeType: connector.AsString(row["column_type"]),
		}
		if isKey && autoIncrement && IsIntegerType(dataType) {
			field.Type, field.Length = TypeOID, 4
		} else {
			field.Type, field.Length = MapSQLType(dataType, maxLength)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
