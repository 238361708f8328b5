package pghost

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tarmac-project/pgcomponent/pg"
)

// Session is one open database session.
type Session interface {
	// Exec runs a statement and returns the number of rows affected.
	Exec(ctx context.Context, statement string, params []pg.Param) (int64, error)

	// Query runs a statement and returns every row it produced.
	Query(ctx context.Context, statement string, params []pg.Param) ([]pg.Column, []pg.Row, error)

	Close(ctx context.Context) error
}

// DialFunc opens a Session for a connection string.
type DialFunc func(ctx context.Context, address string) (Session, error)

// PgconnDialer returns a DialFunc backed by a pgconn connection.
func PgconnDialer(timeout time.Duration) DialFunc {
	return func(ctx context.Context, address string) (Session, error) {
		cfg, err := pgconn.ParseConfig(address)
		if err != nil {
			return nil, err
		}
		if timeout > 0 {
			cfg.ConnectTimeout = timeout
		}

		conn, err := pgconn.ConnectConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &pgconnSession{conn: conn}, nil
	}
}

type pgconnSession struct {
	conn *pgconn.PgConn
}

func (s *pgconnSession) Exec(ctx context.Context, statement string, params []pg.Param) (int64, error) {
	values, oids, formats := encodeParams(params)
	tag, err := s.conn.ExecParams(ctx, statement, values, oids, formats, binaryResults).Close()
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgconnSession) Query(ctx context.Context, statement string, params []pg.Param) ([]pg.Column, []pg.Row, error) {
	values, oids, formats := encodeParams(params)
	rr := s.conn.ExecParams(ctx, statement, values, oids, formats, binaryResults)

	cols := columnsFromFields(rr.FieldDescriptions())
	rows := []pg.Row{}
	for rr.NextRow() {
		rows = append(rows, rowFromValues(rr.Values()))
	}
	if _, err := rr.Close(); err != nil {
		return nil, nil, err
	}
	return cols, rows, nil
}

func (s *pgconnSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
