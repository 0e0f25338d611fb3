package workspace

import (
	"strconv"
	"strings"
)

// Field type tags reported in the catalog
const (
	TypeOID          = "OID"
	TypeGeometry     = "Geometry"
	TypeInteger      = "Integer"
	TypeSmallInteger = "SmallInteger"
	TypeBigInteger   = "BigInteger"
	TypeDouble       = "Double"
	TypeSingle       = "Single"
	TypeDate         = "Date"
	TypeString       = "String"
	TypeBlob         = "Blob"
	TypeGUID         = "GUID"
)

// Shape types a feature class can be filtered on
const (
	ShapePoint      = "Point"
	ShapeMultipoint = "Multipoint"
	ShapePolyline   = "Polyline"
	ShapePolygon    = "Polygon"
)

var geometryTypes = map[string]string{
	"GEOMETRY":           "",
	"GEOGRAPHY":          "",
	"GEOMETRYCOLLECTION": "",
	"GEOMCOLLECTION":     "",
	"POINT":              ShapePoint,
	"MULTIPOINT":         ShapeMultipoint,
	"LINESTRING":         ShapePolyline,
	"MULTILINESTRING":    ShapePolyline,
	"CIRCULARSTRING":     ShapePolyline,
	"COMPOUNDCURVE":      ShapePolyline,
	"CURVE":              ShapePolyline,
	"MULTICURVE":         ShapePolyline,
	"POLYGON":            ShapePolygon,
	"MULTIPOLYGON":       ShapePolygon,
	"CURVEPOLYGON":       ShapePolygon,
	"SURFACE":            ShapePolygon,
	"MULTISURFACE":       ShapePolygon,
}

// MapSQLType maps a declared column type to a catalog type tag and length.
// maxLength is the character limit reported separately by the datastore, if any;
// a limit declared inline such as TEXT(50) is used when maxLength is not positive.
func MapSQLType(native string, maxLength int64) (string, int64) {
	base, declared := splitDeclaredType(native)
	if maxLength <= 0 {
		maxLength = declared
	}

	switch base {
	case "INT", "INTEGER", "MEDIUMINT", "INT4", "SERIAL", "SERIAL4":
		return TypeInteger, 4
	case "SMALLINT", "TINYINT", "BOOLEAN", "BOOL", "INT2", "SMALLSERIAL":
		return TypeSmallInteger, 2
	case "BIGINT", "INT8", "BIGSERIAL":
		return TypeBigInteger, 8
	case "DOUBLE", "DOUBLE PRECISION", "REAL", "FLOAT8", "DECIMAL", "NUMERIC":
		return TypeDouble, 8
	case "FLOAT", "FLOAT4":
		return TypeSingle, 4
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return TypeDate, 8
	case "TEXT", "VARCHAR", "CHAR", "CHARACTER", "CHARACTER VARYING", "BPCHAR",
		"NVARCHAR", "NCHAR", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "CLOB":
		if maxLength < 0 {
			maxLength = 0
		}
		return TypeString, maxLength
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA", "BINARY", "VARBINARY":
		return TypeBlob, 0
	case "UUID", "GUID", "UNIQUEIDENTIFIER":
		return TypeGUID, 38
	}

	if IsGeometryType(base) {
		return TypeGeometry, 0
	}

	return base, 0
}

// IsGeometryType reports whether a declared type names a spatial column
func IsGeometryType(native string) bool {
	base, _ := splitDeclaredType(native)
	_, ok := geometryTypes[stripDimensions(base)]
	return ok
}

// IsIntegerType reports whether a declared type can back an object ID
func IsIntegerType(native string) bool {
	t, _ := MapSQLType(native, 0)
	return t == TypeInteger || t == TypeSmallInteger || t == TypeBigInteger
}

// ShapeType maps a geometry type name such as MULTIPOLYGON or POINTZ to a shape type.
// Generic geometry columns have no shape type.
func ShapeType(geometryTypeName string) string {
	base, _ := splitDeclaredType(geometryTypeName)
	return geometryTypes[stripDimensions(base)]
}

// splitDeclaredType splits "TEXT(50)" into ("TEXT", 50); precision/scale pairs
// like DECIMAL(10,2) keep the first number.
func splitDeclaredType(native string) (string, int64) {
	s := strings.ToUpper(strings.TrimSpace(native))
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return strings.Join(strings.Fields(s), " "), 0
	}

	base := strings.Join(strings.Fields(s[:open]), " ")
	args := strings.TrimSuffix(strings.TrimSpace(s[open+1:]), ")")
	if comma := strings.IndexByte(args, ','); comma >= 0 {
		args = args[:comma]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || n < 0 {
		return base, 0
	}
	return base, n
}

// stripDimensions removes Z, M and ZM suffixes from geometry type names
func stripDimensions(name string) string {
	if _, ok := geometryTypes[name]; ok {
		return name
	}
	for _, suffix := range []string{" ZM", "ZM", " Z", "Z", " M", "M"} {
		trimmed := strings.TrimSuffix(name, suffix)
		if trimmed == name {
			continue
		}
		if _, ok := geometryTypes[trimmed]; ok {
			return trimmed
		}
	}
	return name
}
