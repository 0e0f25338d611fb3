// Package exporter writes the field catalog of a workspace as CSV.
package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// CatalogExporter walks the feature classes of a datastore and writes one row per field
type CatalogExporter struct {
	Source  workspace.Datastore
	Options models.ListOptions
	CRLF    bool
	Logger  *logrus.Logger
}

// NewCatalogExporter creates a new catalog exporter
func NewCatalogExporter(source workspace.Datastore, opts models.ListOptions, crlf bool, logger *logrus.Logger) *CatalogExporter {
	return &CatalogExporter{
		Source:  source,
		Options: opts,
		CRLF:    crlf,
		Logger:  logger,
	}
}

// ExportToFile creates or truncates path and writes the catalog into it.
// Rows written before a failure stay in the file.
func (ce *CatalogExporter) ExportToFile(path string) (summary models.ExportSummary, err error) {
	summary.OutputPath = path
	if strings.TrimSpace(path) == "" {
		return summary, fmt.Errorf("%w: output path is empty", models.ErrConfiguration)
	}

	file, err := os.Create(path)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", models.ErrOutputWrite, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", models.ErrOutputWrite, path, closeErr)
		}
	}()

	ce.Logger.Infof("Writing field catalog to %s", path)
	summary, err = ce.Export(file)
	summary.OutputPath = path
	return summary, err
}

// Export writes the header row and one row per (feature class, field) pair to w,
// keeping the order the datastore reports
func (ce *CatalogExporter) Export(w io.Writer) (models.ExportSummary, error) {
	var summary models.ExportSummary

	writer := csv.NewWriter(w)
	writer.UseCRLF = ce.CRLF
	// Whatever made it into the writer is flushed, even on a failed query
	defer writer.Flush()

	if err := ce.writeRecord(writer, models.Header); err != nil {
		return summary, err
	}

	featureClasses, err := ce.Source.ListFeatureClasses(ce.Options)
	if err != nil {
		return summary, ce.queryError("listing feature classes", err)
	}

	for _, fc := range featureClasses {
		fields, err := ce.Source.ListFields(fc)
		if err != nil {
			return summary, ce.queryError(fmt.Sprintf("listing fields of %s", fc), err)
		}

		for _, field := range fields {
			row := models.NewCatalogRow(fc, field)
			if err := ce.writeRecord(writer, row.Record()); err != nil {
				return summary, err
			}
			summary.Rows++
		}

		summary.FeatureClasses++
		ce.Logger.Debugf("Cataloged %d fields of %s", len(fields), fc)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return summary, fmt.Errorf("%w: %v", models.ErrOutputWrite, err)
	}

	ce.Logger.Infof("Cataloged %d fields across %d feature classes", summary.Rows, summary.FeatureClasses)
	return summary, nil
}

func (ce *CatalogExporter) writeRecord(writer *csv.Writer, record []string) error {
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("%w: %v", models.ErrOutputWrite, err)
	}
	return nil
}

// queryError tags a datastore failure, keeping configuration and availability errors as they are
func (ce *CatalogExporter) queryError(action string, err error) error {
	if errors.Is(err, models.ErrConfiguration) || errors.Is(err, models.ErrDatastoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", models.ErrDatastoreQuery, action, err)
}
