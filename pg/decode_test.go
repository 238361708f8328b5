package pg

import (
	"bytes"
	"database/sql"
	"errors"
	"math"
	"testing"
)

func field(t DataType, c Cell) Field {
	return Field{Index: 3, Column: Column{Name: "col", DataType: t}, Cell: c}
}

func TestDecodeIntegers(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		field  Field
		want16 int16
		want32 int32
		want64 int64
		err16  error
		err32  error
		err64  error
	}{
		{
			name:   "int2 zero",
			field:  field(DataTypeInt2, Int16Cell(0)),
			want16: 0, want32: 0, want64: 0,
		},
		{
			name:   "int2 negative widens",
			field:  field(DataTypeInt2, Int16Cell(-12)),
			want16: -12, want32: -12, want64: -12,
		},
		{
			name:   "int4 widens to int32 and int64",
			field:  field(DataTypeInt4, Int32Cell(math.MaxInt16+1)),
			err16:  ErrTypeMismatch,
			want32: math.MaxInt16 + 1, want64: math.MaxInt16 + 1,
		},
		{
			name:   "int4 never narrows even when the value fits",
			field:  field(DataTypeInt4, Int32Cell(5)),
			err16:  ErrTypeMismatch,
			want32: 5, want64: 5,
		},
		{
			name:   "int8 never narrows even when the value fits",
			field:  field(DataTypeInt8, Int64Cell(7)),
			err16:  ErrTypeMismatch,
			err32:  ErrTypeMismatch,
			want64: 7,
		},
		{
			name:   "int8 max",
			field:  field(DataTypeInt8, Int64Cell(math.MaxInt64)),
			err16:  ErrTypeMismatch,
			err32:  ErrTypeMismatch,
			want64: math.MaxInt64,
		},
		{
			name:  "null",
			field: field(DataTypeInt4, NullCell()),
			err16: ErrUnexpectedNull, err32: ErrUnexpectedNull, err64: ErrUnexpectedNull,
		},
		{
			name:  "text column",
			field: field(DataTypeText, TextCell("12")),
			err16: ErrTypeMismatch, err32: ErrTypeMismatch, err64: ErrTypeMismatch,
		},
		{
			name:  "short int4",
			field: field(DataTypeInt4, Cell{Data: []byte{0, 1}}),
			err16: ErrTypeMismatch, err32: ErrMalformedCell, err64: ErrMalformedCell,
		},
		{
			name:  "unknown type",
			field: field(DataTypeUnknown, Cell{Data: []byte{0, 1}}),
			err16: ErrUnsupportedType, err32: ErrUnsupportedType, err64: ErrUnsupportedType,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v16, err := DecodeInt16(tc.field)
			if !errors.Is(err, tc.err16) || (tc.err16 == nil && v16 != tc.want16) {
				t.Errorf("int16: want %d/%v, got %d/%v", tc.want16, tc.err16, v16, err)
			}
			v32, err := DecodeInt32(tc.field)
			if !errors.Is(err, tc.err32) || (tc.err32 == nil && v32 != tc.want32) {
				t.Errorf("int32: want %d/%v, got %d/%v", tc.want32, tc.err32, v32, err)
			}
			v64, err := DecodeInt64(tc.field)
			if !errors.Is(err, tc.err64) || (tc.err64 == nil && v64 != tc.want64) {
				t.Errorf("int64: want %d/%v, got %d/%v", tc.want64, tc.err64, v64, err)
			}
		})
	}
}

func TestDecodeWiderIntegerIsMismatch(t *testing.T) {
	t.Parallel()

	_, err := DecodeInt16(field(DataTypeInt4, Int32Cell(12)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrMalformedCell) {
		t.Fatalf("width mismatch must not carry a value cause, got %v", err)
	}

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Index != 3 || de.Column != "col" || de.Target != "int16" || de.DataType != DataTypeInt4 {
		t.Fatalf("unexpected error context %+v", de)
	}

	if _, err := DecodeInt32(field(DataTypeInt8, Int64Cell(12))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("int8 into int32: expected type mismatch, got %v", err)
	}
}

func TestDecodeFloats(t *testing.T) {
	t.Parallel()

	t.Run("float4 to float32", func(t *testing.T) {
		v, err := DecodeFloat32(field(DataTypeFloat4, Float32Cell(1.5)))
		if err != nil || v != 1.5 {
			t.Fatalf("want 1.5, got %v/%v", v, err)
		}
	})

	t.Run("float4 widens to float64", func(t *testing.T) {
		v, err := DecodeFloat64(field(DataTypeFloat4, Float32Cell(0.25)))
		if err != nil || v != 0.25 {
			t.Fatalf("want 0.25, got %v/%v", v, err)
		}
	})

	t.Run("float8 to float64", func(t *testing.T) {
		v, err := DecodeFloat64(field(DataTypeFloat8, Float64Cell(math.Pi)))
		if err != nil || v != math.Pi {
			t.Fatalf("want pi, got %v/%v", v, err)
		}
	})

	t.Run("float8 never narrows", func(t *testing.T) {
		_, err := DecodeFloat32(field(DataTypeFloat8, Float64Cell(1)))
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected mismatch, got %v", err)
		}
	})

	t.Run("malformed float4 reported as float64", func(t *testing.T) {
		_, err := DecodeFloat64(field(DataTypeFloat4, Cell{Data: []byte{1}}))
		var de *DecodeError
		if !errors.As(err, &de) || de.Target != "float64" || !errors.Is(err, ErrMalformedCell) {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("integer column", func(t *testing.T) {
		_, err := DecodeFloat64(field(DataTypeInt8, Int64Cell(1)))
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected mismatch, got %v", err)
		}
	})

	t.Run("null", func(t *testing.T) {
		_, err := DecodeFloat32(field(DataTypeFloat4, NullCell()))
		if !errors.Is(err, ErrUnexpectedNull) {
			t.Fatalf("expected unexpected null, got %v", err)
		}
	})
}

func TestDecodeBool(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		field   Field
		want    bool
		wantErr error
	}{
		{name: "true", field: field(DataTypeBool, BoolCell(true)), want: true},
		{name: "false", field: field(DataTypeBool, BoolCell(false)), want: false},
		{name: "null", field: field(DataTypeBool, NullCell()), wantErr: ErrUnexpectedNull},
		{name: "int2", field: field(DataTypeInt2, Int16Cell(1)), wantErr: ErrTypeMismatch},
		{name: "bad byte", field: field(DataTypeBool, Cell{Data: []byte{2}}), wantErr: ErrMalformedCell},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeBool(tc.field)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDecodeString(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		field   Field
		want    string
		wantErr error
	}{
		{name: "char strips padding", field: field(DataTypeChar, TextCell("rchar     ")), want: "rchar"},
		{name: "char keeps leading blanks", field: field(DataTypeChar, TextCell("  x  ")), want: "  x"},
		{name: "varchar keeps trailing blanks", field: field(DataTypeVarchar, TextCell("rvarchar ")), want: "rvarchar "},
		{name: "text", field: field(DataTypeText, TextCell("rtext")), want: "rtext"},
		{name: "empty text", field: field(DataTypeText, Cell{}), want: ""},
		{name: "null", field: field(DataTypeText, NullCell()), wantErr: ErrUnexpectedNull},
		{name: "bytea", field: field(DataTypeBytea, BytesCell([]byte("x"))), wantErr: ErrTypeMismatch},
		{name: "invalid utf8", field: field(DataTypeText, Cell{Data: []byte{0xff, 0xfe}}), wantErr: ErrMalformedCell},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeString(tc.field)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDecodeBytes(t *testing.T) {
	t.Parallel()

	src := Cell{Data: []byte{0x7e, 0x00, 0xff}}
	got, err := DecodeBytes(field(DataTypeBytea, src))
	if err != nil {
		t.Fatalf("DecodeBytes returned error: %v", err)
	}
	if !bytes.Equal(got, src.Data) {
		t.Fatalf("want %x, got %x", src.Data, got)
	}

	got[0] = 0
	if src.Data[0] != 0x7e {
		t.Fatalf("DecodeBytes must return a copy")
	}

	if _, err := DecodeBytes(field(DataTypeText, TextCell("x"))); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected mismatch for text column, got %v", err)
	}
	if _, err := DecodeBytes(field(DataTypeBytea, NullCell())); !errors.Is(err, ErrUnexpectedNull) {
		t.Fatalf("expected unexpected null, got %v", err)
	}
}

func TestDecodeBytesText(t *testing.T) {
	t.Parallel()

	got, err := DecodeBytesText(field(DataTypeBytea, BytesCell([]byte{0x7e})))
	if err != nil || got != "~" {
		t.Fatalf("want ~, got %q/%v", got, err)
	}

	_, err = DecodeBytesText(field(DataTypeBytea, BytesCell([]byte{0xc3, 0x28})))
	if !errors.Is(err, ErrTypeMismatch) || !errors.Is(err, ErrMalformedCell) {
		t.Fatalf("expected malformed mismatch for invalid UTF-8, got %v", err)
	}
}

func TestOptional(t *testing.T) {
	t.Parallel()

	decode := Optional(DecodeBool)

	cells := []Field{
		field(DataTypeBool, NullCell()),
		field(DataTypeBool, BoolCell(true)),
		field(DataTypeBool, BoolCell(false)),
		field(DataTypeInt2, Int16Cell(1)),
		field(DataTypeBool, Cell{Data: []byte{9}}),
	}

	for _, f := range cells {
		got, err := decode(f)
		plain, plainErr := DecodeBool(f)

		switch {
		case f.Cell.Null:
			if err != nil || got.Valid {
				t.Errorf("null cell: want absent, got %+v/%v", got, err)
			}
		case plainErr != nil:
			if err == nil || err.Error() != plainErr.Error() {
				t.Errorf("present cell: want error %v, got %v", plainErr, err)
			}
		default:
			if err != nil || got != (sql.Null[bool]{V: plain, Valid: true}) {
				t.Errorf("present cell: want %v, got %+v/%v", plain, got, err)
			}
		}
	}
}

func TestOptional_String(t *testing.T) {
	t.Parallel()

	got, err := Optional(DecodeString)(field(DataTypeChar, TextCell("ab  ")))
	if err != nil || !got.Valid || got.V != "ab" {
		t.Fatalf("want valid ab, got %+v/%v", got, err)
	}
}
