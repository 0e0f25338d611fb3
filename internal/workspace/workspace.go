// Package workspace gives read-only access to the feature classes and fields
// of a geodatabase workspace. A workspace is a GeoPackage file, a spatially
// enabled MySQL schema or a PostGIS schema, addressed by a single location string.
package workspace

import (
	"fmt"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/connector"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// Kind identifies the storage behind a workspace location
type Kind string

const (
	KindGeoPackage Kind = "geopackage"
	KindMySQL      Kind = "mysql"
	KindPostGIS    Kind = "postgis"
)

// Datastore is the read-only view of a workspace the exporter depends on
type Datastore interface {
	ListFeatureClasses(opts models.ListOptions) ([]string, error)
	ListFields(featureClass string) ([]models.Field, error)
}

// featureClassInfo is a feature class as listed by a dialect, before filtering
type featureClassInfo struct {
	Name      string
	ShapeType string
}

// dialect holds the storage specific catalog queries
type dialect interface {
	featureClasses(db *connector.DatabaseConnector) ([]featureClassInfo, error)
	fields(db *connector.DatabaseConnector, featureClass string) ([]models.Field, error)
}

// Workspace is an open geodatabase workspace
type Workspace struct {
	Kind     Kind
	Location string
	DB       *connector.DatabaseConnector
	Logger   *logrus.Logger
	dialect  dialect
}

// Detect resolves which kind of workspace a location refers to
func Detect(location string) (Kind, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("%w: workspace location is empty", models.ErrConfiguration)
	}

	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "mysql://"):
		return KindMySQL, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostGIS, nil
	case strings.Contains(lower, "://"):
		return "", fmt.Errorf("%w: unsupported workspace scheme in %q", models.ErrConfiguration, location)
	}

	return KindGeoPackage, nil
}

// Open connects to the workspace at location.
// The caller must Close the returned workspace.
func Open(location string, logger *logrus.Logger) (*Workspace, error) {
	kind, err := Detect(location)
	if err != nil {
		return nil, err
	}

	var ws *Workspace
	switch kind {
	case KindMySQL:
		ws, err = openMySQL(location, logger)
	case KindPostGIS:
		ws, err = openPostGIS(location, logger)
	default:
		ws, err = openGeoPackage(location, logger)
	}
	if err != nil {
		return nil, err
	}

	logger.Infof("Opened %s workspace: %s", ws.Kind, ws.DB.Database)
	return ws, nil
}

// connect opens the connector, reporting failures as an unavailable datastore
func connect(db *connector.DatabaseConnector) error {
	if err := db.Connect(); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrDatastoreUnavailable, db.Database, err)
	}
	return nil
}

// Close releases the workspace connection
func (w *Workspace) Close() {
	w.DB.Disconnect()
}

// ListFeatureClasses returns the names of the feature classes matching opts,
// in the order the workspace reports them
func (w *Workspace) ListFeatureClasses(opts models.ListOptions) ([]string, error) {
	infos, err := w.listFeatureClasses(opts)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}

// ListFields returns the fields of a feature class in column order
func (w *Workspace) ListFields(featureClass string) ([]models.Field, error) {
	fields, err := w.dialect.fields(w.DB, featureClass)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("feature class %q does not exist", featureClass)
	}

	w.Logger.Debugf("Feature class %s has %d fields", featureClass, len(fields))
	return fields, nil
}

// Describe returns the matching feature classes together with their fields
func (w *Workspace) Describe(opts models.ListOptions) ([]models.FeatureClass, error) {
	infos, err := w.listFeatureClasses(opts)
	if err != nil {
		return nil, err
	}

	classes := make([]models.FeatureClass, 0, len(infos))
	for _, info := range infos {
		fields, err := w.ListFields(info.Name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, models.FeatureClass{
			Name:      info.Name,
			ShapeType: info.ShapeType,
			Fields:    fields,
		})
	}
	return classes, nil
}

func (w *Workspace) listFeatureClasses(opts models.ListOptions) ([]featureClassInfo, error) {
	featureType, err := NormalizeFeatureType(opts.FeatureType)
	if err != nil {
		return nil, err
	}

	infos, err := w.dialect.featureClasses(w.DB)
	if err != nil {
		return nil, err
	}

	var matched []featureClassInfo
	for _, info := range infos {
		if !MatchWildcard(opts.Wildcard, info.Name) {
			continue
		}
		if featureType != "" && info.ShapeType != featureType {
			continue
		}
		matched = append(matched, info)
	}

	w.Logger.Infof("Found %d feature classes (%d before filtering)", len(matched), len(infos))
	return matched, nil
}

// NormalizeFeatureType validates a feature type filter, "" and All mean no filter
func NormalizeFeatureType(featureType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(featureType)) {
	case "", "all":
		return "", nil
	case "point":
		return ShapePoint, nil
	case "multipoint":
		return ShapeMultipoint, nil
	case "polyline", "line":
		return ShapePolyline, nil
	case "polygon":
		return ShapePolygon, nil
	}
	return "", fmt.Errorf("%w: unknown feature type %q", models.ErrConfiguration, featureType)
}

// MatchWildcard reports whether name matches a case-insensitive * pattern
func MatchWildcard(pattern, name string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)

	// Only * is special; escape everything path.Match would interpret
	escaped := strings.NewReplacer(`\`, `\\`, "?", `\?`, "[", `\[`, "]", `\]`).Replace(pattern)
	matched, err := path.Match(escaped, name)
	return err == nil && matched
}
