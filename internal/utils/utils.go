package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("GDBCATALOG_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// ApplyLogLevel switches an existing logger to levelStr, ignoring invalid levels
func ApplyLogLevel(logger *logrus.Logger, levelStr string) {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		logger.Warningf("Ignoring invalid log level %q", levelStr)
		return
	}
	if level != logger.Level {
		logger.SetLevel(level)
		logger.Debugf("Log level changed to: %s", level)
	}
}

// LoadEnvironmentVariables loads environment variables from .env file
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	// Check if a sample .env file exists but not the actual .env file
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Infof("Loaded environment variables from %s", envFile)
		}
	} else {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
	}

	// Log all catalog related environment variables (for debugging)
	if logger.Level == logrus.DebugLevel {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "GDBCATALOG_") && !strings.HasPrefix(env, "MYSQL_") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if strings.HasSuffix(parts[0], "PASSWORD") {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], RedactLocation(parts[1]))
			}
		}
	}

	if os.Getenv("GDBCATALOG_WORKSPACE") == "" {
		logger.Debug("GDBCATALOG_WORKSPACE is not set; the workspace must come from --workspace or a config file")
		return false
	}
	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// RedactLocation masks the password of a workspace URL; paths are returned unchanged
func RedactLocation(location string) string {
	if !strings.Contains(location, "://") {
		return location
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.Redacted()
}

// PrintSummary prints a summary of the export run
func PrintSummary(summary models.ExportSummary) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("FIELD CATALOG EXPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Output file: %s\n", summary.OutputPath)
	fmt.Printf("Feature classes cataloged: %d\n", summary.FeatureClasses)
	fmt.Printf("Field rows written: %d\n", summary.Rows)
	fmt.Println(strings.Repeat("=", 50))
}

// PrintWorkspaceReport prints the feature classes of a workspace with their fields
func PrintWorkspaceReport(location string, classes []models.FeatureClass) {
	WriteWorkspaceReport(os.Stdout, location, classes)
}

// WriteWorkspaceReport writes the analyze-only report to w
func WriteWorkspaceReport(w io.Writer, location string, classes []models.FeatureClass) {
	totalFields := 0
	shapeCounts := make(map[string]int)
	for _, fc := range classes {
		totalFields += len(fc.Fields)
		shape := fc.ShapeType
		if shape == "" {
			shape = "Unknown"
		}
		shapeCounts[shape]++
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "WORKSPACE ANALYSIS REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Workspace: %s\n", RedactLocation(location))

	fmt.Fprintln(w, "\n1. BASIC STATISTICS")
	fmt.Fprintf(w, "   Feature classes: %d\n", len(classes))
	fmt.Fprintf(w, "   Fields: %d\n", totalFields)

	fmt.Fprintln(w, "\n2. SHAPE TYPES")
	for _, shape := range []string{"Point", "Multipoint", "Polyline", "Polygon", "Unknown"} {
		if shapeCounts[shape] > 0 {
			fmt.Fprintf(w, "   %s: %d\n", shape, shapeCounts[shape])
		}
	}

	fmt.Fprintln(w, "\n3. FEATURE CLASSES")
	for i, fc := range classes {
		shape := fc.ShapeType
		if shape == "" {
			shape = "Unknown"
		}
		fmt.Fprintf(w, "   %3d. %s (%s, %d fields)\n", i+1, fc.Name, shape, len(fc.Fields))
		for _, field := range fc.Fields {
			fmt.Fprintf(w, "        - %s %s(%d)\n", field.Name, field.Type, field.Length)
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

// VerifyOutput re-reads a catalog file and checks its header and data row count
func VerifyOutput(path string, expectedRows int, logger *logrus.Logger) (bool, []string) {
	logger.Infof("Verifying catalog file %s...", path)

	var problems []string

	file, err := os.Open(path)
	if err != nil {
		problems = append(problems, fmt.Sprintf("cannot open catalog file: %v", err))
		logger.Errorf("Verification failed: %s", problems[0])
		return false, problems
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		problems = append(problems, fmt.Sprintf("catalog file is not valid CSV: %v", err))
		logger.Errorf("Verification failed: %s", problems[0])
		return false, problems
	}

	if len(records) == 0 {
		problems = append(problems, "catalog file is empty")
	} else if strings.Join(records[0], ",") != strings.Join(models.Header, ",") {
		problems = append(problems, fmt.Sprintf("unexpected header %q", strings.Join(records[0], ",")))
	}

	if rows := len(records) - 1; len(records) > 0 && rows != expectedRows {
		problems = append(problems, fmt.Sprintf("expected %d field rows, found %d", expectedRows, rows))
	}

	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < len(models.Header) {
			problems = append(problems, fmt.Sprintf("line %d: expected %d columns, found %d", i+1, len(models.Header), len(record)))
			continue
		}
		if _, err := strconv.ParseInt(record[3], 10, 64); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: LENGTH %q is not an integer", i+1, record[3]))
		}
	}

	if len(problems) == 0 {
		logger.Info("Verification successful: catalog header and row count match")
		return true, nil
	}

	for _, problem := range problems {
		logger.Errorf("Verification failed: %s", problem)
	}
	return false, problems
}

// PrintVerificationResults prints the results of the catalog verification
func PrintVerificationResults(problems []string) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("CATALOG VERIFICATION RESULTS")
	fmt.Println(strings.Repeat("=", 50))

	if len(problems) == 0 {
		fmt.Println("✅ Catalog file matches the workspace")
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	fmt.Printf("❌ %d problem(s) found:\n", len(problems))
	for _, problem := range problems {
		fmt.Printf("  - %s\n", problem)
	}
	fmt.Println(strings.Repeat("=", 50))
}
