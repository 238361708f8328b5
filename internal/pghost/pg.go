package pghost

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"

	sdk "github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/pg"
)

// database serves the execute and query functions. Database failures are reported
// in the response status, never as a host call error.
func (h *Host) database(function string, payload []byte) ([]byte, error) {
	if function != pg.FunctionExecute && function != pg.FunctionQuery {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownFunction, pg.CapabilityName, function)
	}

	var req pg.Request
	if err := req.Unmarshal(payload); err != nil {
		return h.pgFailure(function, sdk.StatusBadInput, errors.Join(ErrInvalidPayload, err))
	}
	if req.Address == "" || req.Statement == "" {
		return h.pgFailure(function, sdk.StatusBadInput, fmt.Errorf("%w: address and statement are required", ErrInvalidPayload))
	}

	s, err := h.session(req.Address)
	if err != nil {
		return h.pgFailure(function, sdk.StatusError, fmt.Errorf("connect: %w", err))
	}

	log := h.log.WithFields(logrus.Fields{"function": function, "params": len(req.Params)})
	log.Debugf("Running statement: %s", req.Statement)

	if function == pg.FunctionExecute {
		affected, err := s.Exec(h.ctx, req.Statement, req.Params)
		if err != nil {
			return h.pgFailure(function, sdk.StatusError, err)
		}
		return (&pg.ExecResponse{Status: okStatus(), RowsAffected: affected}).Marshal()
	}

	cols, rows, err := s.Query(h.ctx, req.Statement, req.Params)
	if err != nil {
		return h.pgFailure(function, sdk.StatusError, err)
	}
	log.WithField("rows", len(rows)).Debug("Query returned")
	return (&pg.QueryResponse{Status: okStatus(), Columns: cols, Rows: rows}).Marshal()
}

func (h *Host) pgFailure(function string, code int32, err error) ([]byte, error) {
	h.log.WithFields(logrus.Fields{"function": function, "code": code}).Warnf("Statement failed: %v", err)

	st := &sdkproto.Status{Code: code, Status: err.Error()}
	if function == pg.FunctionExecute {
		return (&pg.ExecResponse{Status: st}).Marshal()
	}
	return (&pg.QueryResponse{Status: st}).Marshal()
}

func okStatus() *sdkproto.Status {
	return &sdkproto.Status{Code: sdk.StatusOK, Status: "OK"}
}
