package scenarios

import (
	"database/sql"
	"fmt"

	"github.com/tarmac-project/pgcomponent/pg"
)

const (
	createGeneralTable = `
		CREATE TEMPORARY TABLE test_general_types (
			rbool bool NOT NULL,
			obool bool,
			rbytea bytea NOT NULL
		)`

	insertGeneralRow = `
		INSERT INTO test_general_types
			(rbool, rbytea)
		VALUES
			($1, $2)`

	selectGeneralRows = `
		SELECT rbool, obool, rbytea
		FROM test_general_types`
)

// GeneralRow is one row of test_general_types. Bytea holds the bytea column
// as text; non UTF-8 payloads fail to decode.
type GeneralRow struct {
	Bool    bool
	OptBool sql.Null[bool]
	Bytea   string
}

// String renders the nullable column as its value or <null>.
func (r GeneralRow) String() string {
	opt := "<null>"
	if r.OptBool.Valid {
		opt = fmt.Sprint(r.OptBool.V)
	}
	return fmt.Sprintf("{Bool:%t OptBool:%s Bytea:%q}", r.Bool, opt, r.Bytea)
}

func readGeneralRow(r *pg.RowReader) GeneralRow {
	return GeneralRow{
		Bool:    pg.Read(r, pg.DecodeBool),
		OptBool: pg.Read(r, pg.Optional(pg.DecodeBool)),
		Bytea:   pg.Read(r, pg.DecodeBytesText),
	}
}

// DecodeGeneralRows decodes a test_general_types selection.
func DecodeGeneralRows(rs *pg.RowSet) ([]GeneralRow, error) {
	return pg.DecodeRows(rs, readGeneralRow)
}

// GeneralTypes round-trips a non-null bool, an unset nullable bool and a
// single byte bytea (0x7E).
func GeneralTypes(db pg.Client, address string) (string, error) {
	params := []pg.Param{
		pg.BoolParam(true),
		pg.BytesParam([]byte{0x7e}),
	}

	rs, err := setupAndSelect(db, address, createGeneralTable, insertGeneralRow, params, selectGeneralRows)
	if err != nil {
		return "", err
	}

	rows, err := DecodeGeneralRows(rs)
	if err != nil {
		return "", fmt.Errorf("decode general rows: %w", err)
	}

	return formatRows(rows, rs), nil
}
