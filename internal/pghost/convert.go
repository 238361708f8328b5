package pghost

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tarmac-project/pgcomponent/pg"
)

// binaryResults requests the binary format for every result column.
var binaryResults = []int16{pgtype.BinaryFormatCode}

var oidTypes = map[uint32]pg.DataType{
	pgtype.Int2OID:    pg.DataTypeInt2,
	pgtype.Int4OID:    pg.DataTypeInt4,
	pgtype.Int8OID:    pg.DataTypeInt8,
	pgtype.Float4OID:  pg.DataTypeFloat4,
	pgtype.Float8OID:  pg.DataTypeFloat8,
	pgtype.BoolOID:    pg.DataTypeBool,
	pgtype.BPCharOID:  pg.DataTypeChar,
	pgtype.VarcharOID: pg.DataTypeVarchar,
	pgtype.TextOID:    pg.DataTypeText,
	pgtype.ByteaOID:   pg.DataTypeBytea,
}

var typeOIDs = func() map[pg.DataType]uint32 {
	m := make(map[pg.DataType]uint32, len(oidTypes))
	for oid, t := range oidTypes {
		m[t] = oid
	}
	return m
}()

// DataTypeForOID maps a server type OID onto a DataType.
func DataTypeForOID(oid uint32) pg.DataType {
	if t, ok := oidTypes[oid]; ok {
		return t
	}
	return pg.DataTypeUnknown
}

// OIDForDataType maps a DataType onto its server type OID, or 0 to let the
// server infer it.
func OIDForDataType(t pg.DataType) uint32 {
	return typeOIDs[t]
}

func encodeParams(params []pg.Param) (values [][]byte, oids []uint32, formats []int16) {
	values = make([][]byte, len(params))
	oids = make([]uint32, len(params))
	formats = make([]int16, len(params))
	for i, p := range params {
		if !p.Value.Null {
			values[i] = append([]byte{}, p.Value.Data...)
		}
		oids[i] = OIDForDataType(p.DataType)
		formats[i] = pgtype.BinaryFormatCode
	}
	return values, oids, formats
}

func columnsFromFields(fields []pgconn.FieldDescription) []pg.Column {
	cols := make([]pg.Column, len(fields))
	for i, f := range fields {
		cols[i] = pg.Column{Name: f.Name, DataType: DataTypeForOID(f.DataTypeOID)}
	}
	return cols
}

// rowFromValues copies one result row; pgconn reuses the backing buffers.
func rowFromValues(values [][]byte) pg.Row {
	row := make(pg.Row, len(values))
	for i, v := range values {
		if v == nil {
			row[i] = pg.NullCell()
			continue
		}
		row[i] = pg.Cell{Data: append([]byte{}, v...)}
	}
	return row
}
