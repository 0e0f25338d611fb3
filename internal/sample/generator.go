package sample

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
)

// attributeTemplates is the pool random feature classes draw their attribute fields from
var attributeTemplates = []models.Field{
	{Name: "NAME", Type: workspace.TypeString, Length: 50},
	{Name: "OWNER", Type: workspace.TypeString, Length: 80},
	{Name: "ADDRESS", Type: workspace.TypeString, Length: 120},
	{Name: "CITY", Type: workspace.TypeString, Length: 40},
	{Name: "ZIP", Type: workspace.TypeString, Length: 10},
	{Name: "NOTES", Type: workspace.TypeString, Length: 0},
	{Name: "PARCEL_ID", Type: workspace.TypeInteger, Length: 4},
	{Name: "LANES", Type: workspace.TypeSmallInteger, Length: 2},
	{Name: "AREA_SQFT", Type: workspace.TypeDouble, Length: 8},
	{Name: "ACRES", Type: workspace.TypeSingle, Length: 4},
	{Name: "UPDATED", Type: workspace.TypeDate, Length: 8},
	{Name: "GLOBALID", Type: workspace.TypeGUID, Length: 38},
}

var shapeTypes = []string{
	workspace.ShapePoint,
	workspace.ShapeMultipoint,
	workspace.ShapePolyline,
	workspace.ShapePolygon,
}

// DataGenerator generates feature class definitions and attribute values
type DataGenerator struct {
	Faker faker.Faker
}

// NewDataGenerator creates a new data generator
func NewDataGenerator() *DataGenerator {
	return &DataGenerator{Faker: faker.New()}
}

// RandomClasses produces n uniquely named feature classes, each with OBJECTID,
// SHAPE and two to six attribute fields
func (dg *DataGenerator) RandomClasses(n int) []models.FeatureClass {
	used := make(map[string]bool)
	classes := make([]models.FeatureClass, 0, n)

	for i := 0; i < n; i++ {
		name := dg.uniqueName(used)
		shape := shapeTypes[rand.Intn(len(shapeTypes))]

		fields := []models.Field{
			{Name: "OBJECTID", Type: workspace.TypeOID, Length: 4},
			{Name: "SHAPE", Type: workspace.TypeGeometry, Length: 0},
		}
		picked := rand.Perm(len(attributeTemplates))[:2+rand.Intn(5)]
		for _, idx := range picked {
			fields = append(fields, attributeTemplates[idx])
		}

		classes = append(classes, models.FeatureClass{
			Name:      name,
			ShapeType: shape,
			Fields:    fields,
		})
	}

	return classes
}

// uniqueName builds a feature class name such as Coastal_Parcels
func (dg *DataGenerator) uniqueName(used map[string]bool) string {
	for attempt := 0; ; attempt++ {
		name := capitalize(dg.Faker.Lorem().Word()) + "_" + capitalize(dg.Faker.Lorem().Word())
		if attempt > 10 {
			name = fmt.Sprintf("%s_%d", name, attempt)
		}
		if !used[strings.ToLower(name)] {
			used[strings.ToLower(name)] = true
			return name
		}
	}
}

// GenerateValue generates a value for an attribute field based on its name and type
func (dg *DataGenerator) GenerateValue(field models.Field) interface{} {
	name := strings.ToLower(field.Name)

	switch field.Type {
	case workspace.TypeString:
		var value string
		switch {
		case strings.Contains(name, "owner") || strings.Contains(name, "name"):
			value = dg.Faker.Person().Name()
		case strings.Contains(name, "address"):
			value = dg.Faker.Address().StreetAddress()
		case strings.Contains(name, "city"):
			value = dg.Faker.Address().City()
		case strings.Contains(name, "zip") || strings.Contains(name, "postal"):
			value = dg.Faker.Address().PostCode()
		default:
			value = dg.Faker.Lorem().Sentence(5)
		}
		if field.Length > 0 && int64(len(value)) > field.Length {
			value = value[:field.Length]
		}
		return value
	case workspace.TypeInteger:
		return int32(rand.Int31())
	case workspace.TypeSmallInteger:
		return int16(rand.Intn(65536) - 32768)
	case workspace.TypeBigInteger:
		return rand.Int63()
	case workspace.TypeDouble:
		return float64(int64(rand.Float64()*1000000)) / 100
	case workspace.TypeSingle:
		return rand.Float32() * 1000
	case workspace.TypeDate:
		days := rand.Intn(365 * 5)
		return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02T15:04:05.000Z")
	case workspace.TypeGUID:
		return "{" + strings.ToUpper(dg.Faker.UUID().V4()) + "}"
	case workspace.TypeBlob:
		return []byte(dg.Faker.RandomStringWithLength(16))
	}

	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
