package scenarios

import (
	"fmt"

	"github.com/tarmac-project/pgcomponent/pg"
)

const (
	createNumericTable = `
		CREATE TEMPORARY TABLE test_numeric_types (
			intid integer GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			rsmallserial smallserial NOT NULL,
			rsmallint smallint NOT NULL,
			rint2 int2 NOT NULL,
			rserial serial NOT NULL,
			rint int NOT NULL,
			rint4 int4 NOT NULL,
			rbigserial bigserial NOT NULL,
			rbigint bigint NOT NULL,
			rint8 int8 NOT NULL,
			rreal real NOT NULL,
			rdouble double precision NOT NULL
		)`

	insertNumericRow = `
		INSERT INTO test_numeric_types
			(rsmallint, rint2, rint, rint4, rbigint, rint8, rreal, rdouble)
		VALUES
			(0, 0, 0, 0, 0, 0, 0, 0)`

	selectNumericRows = `
		SELECT
			intid, rsmallserial, rsmallint, rint2, rserial, rint,
			rint4, rbigserial, rbigint, rint8, rreal, rdouble
		FROM test_numeric_types`
)

// NumericRow is one row of test_numeric_types.
type NumericRow struct {
	IntID       int32
	SmallSerial int16
	SmallInt    int16
	Int2        int16
	Serial      int32
	Int         int32
	Int4        int32
	BigSerial   int64
	BigInt      int64
	Int8        int64
	Real        float32
	Double      float64
}

func readNumericRow(r *pg.RowReader) NumericRow {
	return NumericRow{
		IntID:       pg.Read(r, pg.DecodeInt32),
		SmallSerial: pg.Read(r, pg.DecodeInt16),
		SmallInt:    pg.Read(r, pg.DecodeInt16),
		Int2:        pg.Read(r, pg.DecodeInt16),
		Serial:      pg.Read(r, pg.DecodeInt32),
		Int:         pg.Read(r, pg.DecodeInt32),
		Int4:        pg.Read(r, pg.DecodeInt32),
		BigSerial:   pg.Read(r, pg.DecodeInt64),
		BigInt:      pg.Read(r, pg.DecodeInt64),
		Int8:        pg.Read(r, pg.DecodeInt64),
		Real:        pg.Read(r, pg.DecodeFloat32),
		Double:      pg.Read(r, pg.DecodeFloat64),
	}
}

// DecodeNumericRows decodes a test_numeric_types selection.
func DecodeNumericRows(rs *pg.RowSet) ([]NumericRow, error) {
	return pg.DecodeRows(rs, readNumericRow)
}

// NumericTypes round-trips a row of zeros through every integer and float width.
func NumericTypes(db pg.Client, address string) (string, error) {
	rs, err := setupAndSelect(db, address, createNumericTable, insertNumericRow, nil, selectNumericRows)
	if err != nil {
		return "", err
	}

	rows, err := DecodeNumericRows(rs)
	if err != nil {
		return "", fmt.Errorf("decode numeric rows: %w", err)
	}

	return formatRows(rows, rs), nil
}
