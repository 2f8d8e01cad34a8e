package measure

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface representing the types a measurement cell
// may hold. Only Int, Float, Str, and Null implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an absent cell (an empty field in the source trace).
// Using an explicit type keeps every cell a valid Value.
type Null struct{}

func (Null) value() {}

// Int represents a signed 64-bit integer cell.
type Int int64

func (Int) value() {}

// Float represents a 64-bit float cell.
type Float float64

func (Float) value() {}

// Str represents a string cell.
type Str string

func (Str) value() {}

// Field is a column/value pair for ordered measurement construction.
type Field struct {
	Column string
	Value  Value
}

// F is a shorthand Field constructor.
// Example: New(0, F("t", Float(0.5)), F("v", Int(3)))
func F(column string, value Value) Field {
	return Field{Column: column, Value: value}
}

// Measurement is an immutable sensor record: a monotonically assigned
// index plus an ordered column→value mapping.
//
// Measurements are created by the trace source and never mutated after
// construction. Column order is preserved from the source header so
// display output is stable.
type Measurement struct {
	index   int
	columns []string
	values  map[string]Value
}

// New creates a measurement from ordered fields.
// The index must be >= 0; it is the 0-based position in the source trace.
func New(index int, fields ...Field) *Measurement {
	m := &Measurement{
		index:   index,
		columns: make([]string, 0, len(fields)),
		values:  make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		if _, dup := m.values[f.Column]; !dup {
			m.columns = append(m.columns, f.Column)
		}
		v := f.Value
		if v == nil {
			v = Null{}
		}
		m.values[f.Column] = v
	}
	return m
}

// Index returns the 0-based position of this measurement in its trace.
func (m *Measurement) Index() int {
	return m.index
}

// Number returns the 1-based measurement number (m1, m2, ...).
// Display only - all internal bookkeeping uses Index.
func (m *Measurement) Number() int {
	return m.index + 1
}

// Columns returns the column names in source order.
// The returned slice is a copy; callers may not mutate the measurement.
func (m *Measurement) Columns() []string {
	cols := make([]string, len(m.columns))
	copy(cols, m.columns)
	return cols
}

// Get returns the value for a column. The second return is false when
// the column does not exist; an empty source field is (Null{}, true).
func (m *Measurement) Get(column string) (Value, bool) {
	v, ok := m.values[column]
	return v, ok
}

// Float coerces a column to float64. Ints widen, floats pass through,
// and numeric strings parse after ","→"." normalization. Returns false
// for missing columns, null cells, and non-numeric strings.
func (m *Measurement) Float(column string) (float64, bool) {
	v, ok := m.values[column]
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

// AsFloat coerces a single value to float64 under the same rules as
// Measurement.Float.
func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	case Str:
		f, err := strconv.ParseFloat(strings.ReplaceAll(string(x), ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Values returns the column→value mapping as ordered fields.
func (m *Measurement) Values() []Field {
	fields := make([]Field, 0, len(m.columns))
	for _, c := range m.columns {
		fields = append(fields, Field{Column: c, Value: m.values[c]})
	}
	return fields
}

// String renders "m<number>: {col=v, ...}" in column order.
func (m *Measurement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "m%d: {", m.Number())
	for i, c := range m.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c)
		sb.WriteByte('=')
		sb.WriteString(formatValue(m.values[c]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func formatValue(v Value) string {
	switch x := v.(type) {
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Str:
		return string(x)
	default:
		return "null"
	}
}
