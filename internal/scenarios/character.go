package scenarios

import (
	"fmt"

	"github.com/tarmac-project/pgcomponent/pg"
)

const (
	createCharacterTable = `
		CREATE TEMPORARY TABLE test_character_types (
			rvarchar varchar(40) NOT NULL,
			rtext text NOT NULL,
			rchar char(10) NOT NULL
		)`

	insertCharacterRow = `
		INSERT INTO test_character_types
			(rvarchar, rtext, rchar)
		VALUES
			($1, $2, $3)`

	selectCharacterRows = `
		SELECT rvarchar, rtext, rchar
		FROM test_character_types`
)

// CharacterRow is one row of test_character_types.
type CharacterRow struct {
	Varchar string
	Text    string
	Char    string
}

func readCharacterRow(r *pg.RowReader) CharacterRow {
	return CharacterRow{
		Varchar: pg.Read(r, pg.DecodeString),
		Text:    pg.Read(r, pg.DecodeString),
		Char:    pg.Read(r, pg.DecodeString),
	}
}

// DecodeCharacterRows decodes a test_character_types selection.
func DecodeCharacterRows(rs *pg.RowSet) ([]CharacterRow, error) {
	return pg.DecodeRows(rs, readCharacterRow)
}

// CharacterTypes round-trips bounded, unbounded and blank-padded text.
func CharacterTypes(db pg.Client, address string) (string, error) {
	params := []pg.Param{
		pg.VarcharParam("rvarchar"),
		pg.TextParam("rtext"),
		pg.TextParam("rchar"),
	}

	rs, err := setupAndSelect(db, address, createCharacterTable, insertCharacterRow, params, selectCharacterRows)
	if err != nil {
		return "", err
	}

	rows, err := DecodeCharacterRows(rs)
	if err != nil {
		return "", fmt.Errorf("decode character rows: %w", err)
	}

	return formatRows(rows, rs), nil
}
