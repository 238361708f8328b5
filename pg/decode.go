package pg

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

var (
	// ErrTypeMismatch indicates the cell's wire type cannot be decoded into the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnexpectedNull indicates a NULL cell was decoded into a non-optional type.
	ErrUnexpectedNull = errors.New("unexpected null")

	// ErrOutOfRange indicates an integer value does not fit the requested type.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMalformedCell indicates the cell bytes are not a valid encoding of the column type.
	ErrMalformedCell = errors.New("malformed cell")

	// ErrUnsupportedType indicates the column type is not one the decoders know.
	ErrUnsupportedType = errors.New("unsupported data type")
)

// Field is one cell together with its position and column metadata.
type Field struct {
	// Index is the column position within the row.
	Index int
	// Column is the metadata of the column at Index.
	Column Column
	// Cell is the raw value.
	Cell Cell
}

// Decoder converts one Field into a value of type T.
type Decoder[T any] func(Field) (T, error)

// DecodeError reports a failure to decode a specific column.
type DecodeError struct {
	// Index is the column position.
	Index int
	// Column is the column name.
	Column string
	// DataType is the declared wire type of the column.
	DataType DataType
	// Target names the Go type that was requested.
	Target string
	// Err is ErrTypeMismatch or ErrUnexpectedNull.
	Err error
	// Cause optionally narrows Err (ErrOutOfRange, ErrMalformedCell, ErrUnsupportedType).
	Cause error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("column %d (%s %s): cannot decode into %s: %v", e.Index, e.Column, e.DataType, e.Target, e.Err)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the error kind and its cause to errors.Is and errors.As.
func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func mismatch(f Field, target string, cause error) *DecodeError {
	return &DecodeError{
		Index:    f.Index,
		Column:   f.Column.Name,
		DataType: f.Column.DataType,
		Target:   target,
		Err:      ErrTypeMismatch,
		Cause:    cause,
	}
}

func unexpectedNull(f Field, target string) *DecodeError {
	return &DecodeError{
		Index:    f.Index,
		Column:   f.Column.Name,
		DataType: f.Column.DataType,
		Target:   target,
		Err:      ErrUnexpectedNull,
	}
}

// decodeInteger reads an integer cell into an int64. Wire widths above
// maxWidth bytes are rejected even when the value would fit.
func decodeInteger(f Field, target string, maxWidth int) (int64, error) {
	if f.Cell.Null {
		return 0, unexpectedNull(f, target)
	}

	want := 0
	switch f.Column.DataType {
	case DataTypeInt2:
		want = 2
	case DataTypeInt4:
		want = 4
	case DataTypeInt8:
		want = 8
	default:
		return 0, mismatch(f, target, unsupported(f.Column.DataType))
	}
	if want > maxWidth {
		return 0, mismatch(f, target, nil)
	}

	b := f.Cell.Data
	if len(b) != want {
		return 0, mismatch(f, target, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrMalformedCell, f.Column.DataType, want, len(b)))
	}

	switch want {
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	default:
		return int64(binary.BigEndian.Uint64(b)), nil
	}
}

func unsupported(t DataType) error {
	if t.Known() {
		return nil
	}
	return ErrUnsupportedType
}

func outOfRange(v int64) error {
	return fmt.Errorf("%w: %d", ErrOutOfRange, v)
}

// DecodeInt16 decodes an int2 column into an int16.
func DecodeInt16(f Field) (int16, error) {
	v, err := decodeInteger(f, "int16", 2)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, mismatch(f, "int16", outOfRange(v))
	}
	return int16(v), nil
}

// DecodeInt32 decodes an int2 or int4 column into an int32.
func DecodeInt32(f Field) (int32, error) {
	v, err := decodeInteger(f, "int32", 4)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, mismatch(f, "int32", outOfRange(v))
	}
	return int32(v), nil
}

// DecodeInt64 decodes any integer column into an int64.
func DecodeInt64(f Field) (int64, error) {
	return decodeInteger(f, "int64", 8)
}

// DecodeFloat32 decodes a float4 column. float8 columns are rejected rather
// than narrowed.
func DecodeFloat32(f Field) (float32, error) {
	if f.Cell.Null {
		return 0, unexpectedNull(f, "float32")
	}
	if f.Column.DataType != DataTypeFloat4 {
		return 0, mismatch(f, "float32", unsupported(f.Column.DataType))
	}
	if len(f.Cell.Data) != 4 {
		return 0, mismatch(f, "float32", fmt.Errorf("%w: float4 needs 4 bytes, got %d", ErrMalformedCell, len(f.Cell.Data)))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(f.Cell.Data)), nil
}

// DecodeFloat64 decodes a float8 column, widening float4 values.
func DecodeFloat64(f Field) (float64, error) {
	if f.Cell.Null {
		return 0, unexpectedNull(f, "float64")
	}

	switch f.Column.DataType {
	case DataTypeFloat4:
		v, err := DecodeFloat32(f)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Target = "float64"
			}
			return 0, err
		}
		return float64(v), nil
	case DataTypeFloat8:
		if len(f.Cell.Data) != 8 {
			return 0, mismatch(f, "float64", fmt.Errorf("%w: float8 needs 8 bytes, got %d", ErrMalformedCell, len(f.Cell.Data)))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(f.Cell.Data)), nil
	default:
		return 0, mismatch(f, "float64", unsupported(f.Column.DataType))
	}
}

// DecodeBool decodes a bool column.
func DecodeBool(f Field) (bool, error) {
	if f.Cell.Null {
		return false, unexpectedNull(f, "bool")
	}
	if f.Column.DataType != DataTypeBool {
		return false, mismatch(f, "bool", unsupported(f.Column.DataType))
	}
	if len(f.Cell.Data) != 1 || f.Cell.Data[0] > 1 {
		return false, mismatch(f, "bool", fmt.Errorf("%w: invalid bool encoding %x", ErrMalformedCell, f.Cell.Data))
	}
	return f.Cell.Data[0] == 1, nil
}

// DecodeString decodes char, varchar and text columns. Blank padding of
// fixed-length char values is removed.
func DecodeString(f Field) (string, error) {
	if f.Cell.Null {
		return "", unexpectedNull(f, "string")
	}

	b := f.Cell.Data
	switch f.Column.DataType {
	case DataTypeChar:
		b = bytes.TrimRight(b, " ")
	case DataTypeVarchar, DataTypeText:
	default:
		return "", mismatch(f, "string", unsupported(f.Column.DataType))
	}

	if !utf8.Valid(b) {
		return "", mismatch(f, "string", fmt.Errorf("%w: invalid UTF-8", ErrMalformedCell))
	}
	return string(b), nil
}

// DecodeBytes decodes a bytea column. The returned slice is a copy.
func DecodeBytes(f Field) ([]byte, error) {
	if f.Cell.Null {
		return nil, unexpectedNull(f, "[]byte")
	}
	if f.Column.DataType != DataTypeBytea {
		return nil, mismatch(f, "[]byte", unsupported(f.Column.DataType))
	}
	return append([]byte{}, f.Cell.Data...), nil
}

// DecodeBytesText decodes a bytea column whose payload must be valid UTF-8.
func DecodeBytesText(f Field) (string, error) {
	if f.Cell.Null {
		return "", unexpectedNull(f, "string")
	}
	if f.Column.DataType != DataTypeBytea {
		return "", mismatch(f, "string", unsupported(f.Column.DataType))
	}
	if !utf8.Valid(f.Cell.Data) {
		return "", mismatch(f, "string", fmt.Errorf("%w: bytea payload is not valid UTF-8", ErrMalformedCell))
	}
	return string(f.Cell.Data), nil
}

// Optional lifts a decoder so that NULL cells decode to an invalid sql.Null
// instead of failing. Present cells are handed to decode unchanged.
func Optional[T any](decode Decoder[T]) Decoder[sql.Null[T]] {
	return func(f Field) (sql.Null[T], error) {
		if f.Cell.Null {
			return sql.Null[T]{}, nil
		}
		v, err := decode(f)
		if err != nil {
			return sql.Null[T]{}, err
		}
		return sql.Null[T]{V: v, Valid: true}, nil
	}
}
