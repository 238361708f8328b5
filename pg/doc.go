/*
Package pg is the outbound PostgreSQL capability for Tarmac components.

Execute and Query send a statement and its typed bind parameters to the host
(capability "pg") and return either the affected-row count or a RowSet. A
RowSet holds column metadata plus rows of raw binary Cells; it is decoded
positionally with the closed set of decoders in this package:

	rs, err := client.Query(addr, "SELECT id, name, nickname FROM people", nil)
	if err != nil {
		return err
	}

	people, err := pg.DecodeRows(rs, func(r *pg.RowReader) Person {
		return Person{
			ID:       pg.Read(r, pg.DecodeInt32),
			Name:     pg.Read(r, pg.DecodeString),
			Nickname: pg.Read(r, pg.Optional(pg.DecodeString)),
		}
	})

Decoding never coerces: a NULL cell fails unless read through Optional, an
integer that does not fit the target fails instead of wrapping, and float8 is
never narrowed to float32. Failures are reported as *DecodeError and match
ErrTypeMismatch or ErrUnexpectedNull with errors.Is.
*/
package pg
