// Package scenarios drives the pg capability through the four end-to-end
// checks exposed by the component: numeric, character and general column
// types, and backend session stability.
package scenarios

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tarmac-project/pgcomponent/pg"
)

// Scenario runs one check against the database at address and returns the
// response body.
type Scenario func(db pg.Client, address string) (string, error)

var (
	// ErrBackendPIDMismatch is returned when two queries in one invocation
	// report different backend processes.
	ErrBackendPIDMismatch = errors.New("backend pid changed between queries")

	// ErrNoRows is returned when a query expected to yield a row returned none.
	ErrNoRows = errors.New("query returned no rows")
)

// Named pairs a scenario with its route selector.
type Named struct {
	Route string
	Run   Scenario
}

// All lists every scenario in route order.
func All() []Named {
	return []Named{
		{Route: "/test_character_types", Run: CharacterTypes},
		{Route: "/test_numeric_types", Run: NumericTypes},
		{Route: "/test_general_types", Run: GeneralTypes},
		{Route: "/pg_backend_pid", Run: BackendPID},
	}
}

// setupAndSelect creates the table, inserts the fixture row and selects it back.
func setupAndSelect(db pg.Client, address, create, insert string, params []pg.Param, sel string) (*pg.RowSet, error) {
	if _, err := db.Execute(address, create, nil); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	if _, err := db.Execute(address, insert, params); err != nil {
		return nil, fmt.Errorf("insert row: %w", err)
	}
	rs, err := db.Query(address, sel, nil)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	return rs, nil
}

// formatRows renders the body shared by the column type scenarios.
func formatRows[T any](rows []T, rs *pg.RowSet) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("row: %+v", r)
	}
	return fmt.Sprintf(
		"Found %d rows(s) as follows:\n%s\n\n(Column info: %s)\n",
		len(rows),
		strings.Join(lines, "\n"),
		rs.ColumnSummary(),
	)
}
