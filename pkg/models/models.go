package models

import "strconv"

// Header is the literal first row of every catalog file
var Header = []string{"FC", "NAME", "TYPE", "LENGTH"}

// Field represents an attribute field of a feature class
type Field struct {
	Name       string
	Type       string
	Length     int64
	NativeType string
}

// FeatureClass represents a named collection of features sharing a schema
type FeatureClass struct {
	Name      string
	ShapeType string
	Fields    []Field
}

// ListOptions narrows the feature classes returned by a workspace
type ListOptions struct {
	Wildcard    string
	FeatureType string
}

// CatalogRow is one flattened (feature class, field) entry of the catalog
type CatalogRow struct {
	FeatureClass string
	Name         string
	Type         string
	Length       int64
}

// NewCatalogRow builds the catalog row for a field of a feature class
func NewCatalogRow(featureClass string, field Field) CatalogRow {
	return CatalogRow{
		FeatureClass: featureClass,
		Name:         field.Name,
		Type:         field.Type,
		Length:       field.Length,
	}
}

// Record renders the row as CSV record values
func (r CatalogRow) Record() []string {
	return []string{r.FeatureClass, r.Name, r.Type, strconv.FormatInt(r.Length, 10)}
}

// ExportSummary represents the result of an export run
type ExportSummary struct {
	OutputPath     string
	FeatureClasses int
	Rows           int
}
