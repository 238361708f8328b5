package pg

import (
	"errors"
	"fmt"
)

// ErrNoMoreColumns is returned when a RowReader is read past its last column.
var ErrNoMoreColumns = errors.New("no more columns in row")

// RowReader decodes one row strictly in column order. The first failure is
// sticky: later reads are skipped and return zero values.
type RowReader struct {
	columns []Column
	cells   Row
	row     int
	pos     int
	err     error
}

// Reader returns a RowReader positioned at the first column of row i. An
// index outside the RowSet yields a reader whose Err reports it.
func (rs *RowSet) Reader(i int) *RowReader {
	if err := rs.checkRow(i); err != nil {
		return &RowReader{columns: rs.columns, row: i, err: err}
	}
	return &RowReader{columns: rs.columns, cells: rs.rows[i], row: i}
}

// Err returns the first decode failure, annotated with the row index.
func (r *RowReader) Err() error { return r.err }

// Remaining returns the number of columns not yet read.
func (r *RowReader) Remaining() int { return len(r.cells) - r.pos }

// next returns the Field for the current column and advances.
func (r *RowReader) next() (Field, bool) {
	if r.err != nil {
		return Field{}, false
	}
	if r.pos >= len(r.cells) {
		r.err = fmt.Errorf("row %d: %w (%d columns)", r.row, ErrNoMoreColumns, len(r.cells))
		return Field{}, false
	}
	f := Field{Index: r.pos, Column: r.columns[r.pos], Cell: r.cells[r.pos]}
	r.pos++
	return f, true
}

// Read decodes the next column of r with decode.
func Read[T any](r *RowReader, decode Decoder[T]) T {
	var zero T
	f, ok := r.next()
	if !ok {
		return zero
	}
	v, err := decode(f)
	if err != nil {
		r.err = fmt.Errorf("row %d: %w", r.row, err)
		return zero
	}
	return v
}

// DecodeRows assembles one record per row in order. The first row that fails
// aborts the call; no partial result is returned.
func DecodeRows[T any](rs *RowSet, assemble func(*RowReader) T) ([]T, error) {
	out := make([]T, 0, rs.Len())
	for i := range rs.rows {
		r := rs.Reader(i)
		rec := assemble(r)
		if err := r.Err(); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
