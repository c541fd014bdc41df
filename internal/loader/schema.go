package loader

// Field declares a column the loader reads from an export
type Field struct {
	Name     string
	Required bool // Nullable fields may be absent or entirely empty
}

// Schema is the set of columns a source needs; everything else is discarded
type Schema struct {
	Source string
	Fields []Field
}

const (
	colIndex   = "Index"
	colDate    = "Date"
	colTime    = "Time"
	colGlucose = "Sensor Glucose (mg/dL)"
	colAlarm   = "Alarm"
)

// CGMSchema describes the columns read from a CGM export
var CGMSchema = Schema{
	Source: "cgm",
	Fields: []Field{
		{Name: colIndex, Required: true},
		{Name: colDate, Required: true},
		{Name: colTime, Required: true},
		{Name: colGlucose},
	},
}

// InsulinSchema describes the columns read from an insulin pump export
var InsulinSchema = Schema{
	Source: "insulin",
	Fields: []Field{
		{Name: colIndex, Required: true},
		{Name: colDate, Required: true},
		{Name: colTime, Required: true},
		{Name: colAlarm},
	},
}

// Projection maps each declared field to its column in a table; nullable
// fields that the table lacks map to -1
type Projection map[string]int

// Project checks the header of a pruned table against the schema
func (s Schema) Project(t *Table) (Projection, error) {
	columns := make(map[string]int, len(t.Header))
	for j, name := range t.Header {
		if _, dup := columns[name]; !dup {
			columns[name] = j
		}
	}

	p := make(Projection, len(s.Fields))
	for _, f := range s.Fields {
		j, ok := columns[f.Name]
		if !ok {
			if f.Required {
				return nil, &SchemaError{Source: s.Source, Field: f.Name, Reason: "is missing or has no values"}
			}
			j = -1
		}
		p[f.Name] = j
	}
	return p, nil
}

// Get returns the named field of row i, or "" for an absent nullable field
func (p Projection) Get(t *Table, i int, field string) string {
	j, ok := p[field]
	if !ok || j < 0 {
		return ""
	}
	return t.Cell(i, j)
}
