package scenarios

import (
	"fmt"

	"github.com/tarmac-project/pgcomponent/pg"
)

const selectBackendPID = "SELECT pg_backend_pid()"

func backendPID(db pg.Client, address string) (int32, error) {
	rs, err := db.Query(address, selectBackendPID, nil)
	if err != nil {
		return 0, err
	}
	if rs.Len() == 0 {
		return 0, ErrNoRows
	}

	r := rs.Reader(0)
	pid := pg.Read(r, pg.DecodeInt32)
	return pid, r.Err()
}

// BackendPID checks that consecutive queries in one invocation are served by
// the same backend process.
func BackendPID(db pg.Client, address string) (string, error) {
	first, err := backendPID(db, address)
	if err != nil {
		return "", fmt.Errorf("first pg_backend_pid: %w", err)
	}

	second, err := backendPID(db, address)
	if err != nil {
		return "", fmt.Errorf("second pg_backend_pid: %w", err)
	}

	if first != second {
		return "", fmt.Errorf("%w: %d then %d", ErrBackendPIDMismatch, first, second)
	}

	return fmt.Sprintf("pg_backend_pid: %d\n", first), nil
}
