package pg

import (
	"errors"
	"fmt"
	"strings"
)

// DataType identifies the wire type of a result column or bind parameter.
type DataType uint8

const (
	// DataTypeUnknown marks a wire type the decoders do not support.
	DataTypeUnknown DataType = iota
	DataTypeInt2
	DataTypeInt4
	DataTypeInt8
	DataTypeFloat4
	DataTypeFloat8
	DataTypeBool
	// DataTypeChar is the blank-padded fixed-length character type (bpchar).
	DataTypeChar
	DataTypeVarchar
	DataTypeText
	DataTypeBytea
)

var dataTypeNames = [...]string{
	DataTypeUnknown: "unknown",
	DataTypeInt2:    "int2",
	DataTypeInt4:    "int4",
	DataTypeInt8:    "int8",
	DataTypeFloat4:  "float4",
	DataTypeFloat8:  "float8",
	DataTypeBool:    "bool",
	DataTypeChar:    "char",
	DataTypeVarchar: "varchar",
	DataTypeText:    "text",
	DataTypeBytea:   "bytea",
}

var dataTypeAliases = map[string]DataType{
	"smallint":          DataTypeInt2,
	"smallserial":       DataTypeInt2,
	"integer":           DataTypeInt4,
	"int":               DataTypeInt4,
	"serial":            DataTypeInt4,
	"bigint":            DataTypeInt8,
	"bigserial":         DataTypeInt8,
	"real":              DataTypeFloat4,
	"double precision":  DataTypeFloat8,
	"boolean":           DataTypeBool,
	"bpchar":            DataTypeChar,
	"character":         DataTypeChar,
	"character varying": DataTypeVarchar,
}

// String returns the PostgreSQL name of the type.
func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// Known reports whether t is one of the supported wire types.
func (t DataType) Known() bool {
	return t != DataTypeUnknown && int(t) < len(dataTypeNames)
}

// ParseDataType maps a PostgreSQL type name to a DataType. Unrecognised names
// yield DataTypeUnknown; they only fail once a cell of that type is decoded.
func ParseDataType(name string) DataType {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i)
		}
	}
	if t, ok := dataTypeAliases[name]; ok {
		return t
	}
	return DataTypeUnknown
}

// Column describes one result column.
type Column struct {
	// Name is the column name reported by the server.
	Name string
	// DataType is the declared wire type of every cell in the column.
	DataType DataType
}

// String renders the column as name:type.
func (c Column) String() string {
	return c.Name + ":" + c.DataType.String()
}

// Cell is the raw binary wire value at one row/column position. Its bytes are
// only meaningful together with the DataType of its column.
type Cell struct {
	// Null is set when the server returned SQL NULL.
	Null bool
	// Data holds the binary wire encoding when Null is false.
	Data []byte
}

// NullCell returns a cell representing SQL NULL.
func NullCell() Cell { return Cell{Null: true} }

// Row is an ordered sequence of cells aligned with the RowSet columns.
type Row []Cell

var (
	// ErrRowLength is returned when a row does not have one cell per column.
	ErrRowLength = errors.New("row length does not match column count")

	// ErrIndexOutOfRange is returned when a row or column index is outside the RowSet.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// RowSet is the immutable result of a query.
type RowSet struct {
	columns []Column
	rows    []Row
}

// NewRowSet builds a RowSet, copying columns and rows. Every row must contain
// exactly one cell per column.
func NewRowSet(columns []Column, rows []Row) (*RowSet, error) {
	rs := &RowSet{
		columns: append([]Column(nil), columns...),
		rows:    make([]Row, 0, len(rows)),
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRowLength, i, len(row), len(columns))
		}
		rs.rows = append(rs.rows, cloneRow(row))
	}

	return rs, nil
}

// Columns returns a copy of the column metadata.
func (rs *RowSet) Columns() []Column {
	return append([]Column(nil), rs.columns...)
}

// Len returns the number of rows.
func (rs *RowSet) Len() int { return len(rs.rows) }

// Row returns a copy of the cells of row i.
func (rs *RowSet) Row(i int) (Row, error) {
	if err := rs.checkRow(i); err != nil {
		return nil, err
	}
	return cloneRow(rs.rows[i]), nil
}

// Field returns the cell at (row, col) together with its column metadata.
func (rs *RowSet) Field(row, col int) (Field, error) {
	if err := rs.checkRow(row); err != nil {
		return Field{}, err
	}
	if col < 0 || col >= len(rs.columns) {
		return Field{}, fmt.Errorf("%w: column %d not in [0,%d)", ErrIndexOutOfRange, col, len(rs.columns))
	}
	return Field{Index: col, Column: rs.columns[col], Cell: rs.rows[row][col]}, nil
}

// ColumnSummary renders the columns as "name:type, name:type".
func (rs *RowSet) ColumnSummary() string {
	parts := make([]string, len(rs.columns))
	for i, c := range rs.columns {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func (rs *RowSet) checkRow(i int) error {
	if i < 0 || i >= len(rs.rows) {
		return fmt.Errorf("%w: row %d not in [0,%d)", ErrIndexOutOfRange, i, len(rs.rows))
	}
	return nil
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for i, c := range row {
		out[i] = Cell{Null: c.Null}
		if c.Data != nil {
			out[i].Data = append([]byte{}, c.Data...)
		}
	}
	return out
}
