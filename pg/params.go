package pg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParam indicates a bind parameter that cannot be sent to the server.
var ErrInvalidParam = errors.New("bind parameter is invalid")

// Param is a typed bind parameter. The server substitutes it for the
// corresponding $n placeholder; it is never interpolated into the statement.
type Param struct {
	// DataType is the declared type of the placeholder.
	DataType DataType
	// Value is the binary wire encoding of the parameter.
	Value Cell
}

// Int16Cell encodes v as an int2 cell.
func Int16Cell(v int16) Cell {
	return Cell{Data: binary.BigEndian.AppendUint16(nil, uint16(v))}
}

// Int32Cell encodes v as an int4 cell.
func Int32Cell(v int32) Cell {
	return Cell{Data: binary.BigEndian.AppendUint32(nil, uint32(v))}
}

// Int64Cell encodes v as an int8 cell.
func Int64Cell(v int64) Cell {
	return Cell{Data: binary.BigEndian.AppendUint64(nil, uint64(v))}
}

// Float32Cell encodes v as a float4 cell.
func Float32Cell(v float32) Cell {
	return Cell{Data: binary.BigEndian.AppendUint32(nil, math.Float32bits(v))}
}

// Float64Cell encodes v as a float8 cell.
func Float64Cell(v float64) Cell {
	return Cell{Data: binary.BigEndian.AppendUint64(nil, math.Float64bits(v))}
}

// BoolCell encodes v as a bool cell.
func BoolCell(v bool) Cell {
	if v {
		return Cell{Data: []byte{1}}
	}
	return Cell{Data: []byte{0}}
}

// TextCell encodes s as a char, varchar or text cell.
func TextCell(s string) Cell {
	return Cell{Data: []byte(s)}
}

// BytesCell encodes b as a bytea cell.
func BytesCell(b []byte) Cell {
	return Cell{Data: append([]byte{}, b...)}
}

// Int16Param binds v as int2.
func Int16Param(v int16) Param { return Param{DataType: DataTypeInt2, Value: Int16Cell(v)} }

// Int32Param binds v as int4.
func Int32Param(v int32) Param { return Param{DataType: DataTypeInt4, Value: Int32Cell(v)} }

// Int64Param binds v as int8.
func Int64Param(v int64) Param { return Param{DataType: DataTypeInt8, Value: Int64Cell(v)} }

// Float32Param binds v as float4.
func Float32Param(v float32) Param { return Param{DataType: DataTypeFloat4, Value: Float32Cell(v)} }

// Float64Param binds v as float8.
func Float64Param(v float64) Param { return Param{DataType: DataTypeFloat8, Value: Float64Cell(v)} }

// BoolParam binds v as bool.
func BoolParam(v bool) Param { return Param{DataType: DataTypeBool, Value: BoolCell(v)} }

// TextParam binds s as text.
func TextParam(s string) Param { return Param{DataType: DataTypeText, Value: TextCell(s)} }

// VarcharParam binds s as varchar.
func VarcharParam(s string) Param { return Param{DataType: DataTypeVarchar, Value: TextCell(s)} }

// BytesParam binds a copy of b as bytea.
func BytesParam(b []byte) Param { return Param{DataType: DataTypeBytea, Value: BytesCell(b)} }

// NullParam binds SQL NULL typed as t.
func NullParam(t DataType) Param { return Param{DataType: t, Value: NullCell()} }

// validateParams checks that every parameter carries a supported type and a
// well-formed fixed-width encoding.
func validateParams(params []Param) error {
	for i, p := range params {
		if !p.DataType.Known() {
			return fmt.Errorf("%w: $%d has unsupported type %s", ErrInvalidParam, i+1, p.DataType)
		}
		if p.Value.Null {
			continue
		}
		if w := fixedWidth(p.DataType); w > 0 && len(p.Value.Data) != w {
			return fmt.Errorf("%w: $%d %s needs %d bytes, got %d", ErrInvalidParam, i+1, p.DataType, w, len(p.Value.Data))
		}
	}
	return nil
}

func fixedWidth(t DataType) int {
	switch t {
	case DataTypeBool:
		return 1
	case DataTypeInt2:
		return 2
	case DataTypeInt4, DataTypeFloat4:
		return 4
	case DataTypeInt8, DataTypeFloat8:
		return 8
	default:
		return 0
	}
}
