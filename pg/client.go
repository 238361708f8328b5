package pg

import (
	"errors"
	"fmt"

	sdk "github.com/tarmac-project/pgcomponent"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	// CapabilityName is the host capability serving PostgreSQL round trips.
	CapabilityName = "pg"
	// FunctionExecute runs a statement that returns no rows.
	FunctionExecute = "execute"
	// FunctionQuery runs a statement that returns a RowSet.
	FunctionQuery = "query"
)

var (
	// ErrInvalidAddress indicates an empty database address.
	ErrInvalidAddress = errors.New("database address is invalid")

	// ErrInvalidStatement indicates an empty SQL statement.
	ErrInvalidStatement = errors.New("statement is invalid")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to marshal request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")
)

// Client defines the outbound PostgreSQL capability.
type Client interface {
	// Execute runs a statement that produces no rows (DDL, INSERT, UPDATE).
	Execute(address, statement string, params []Param) (ExecResult, error)

	// Query runs a statement and returns the complete result.
	Query(address, statement string, params []Param) (*RowSet, error)

	// Close releases resources held by the client.
	Close() error
}

// Config controls how a DBClient interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for pg operations.
	HostCall sdk.HostCall
}

// ExecResult mirrors the ExecResponse payload fields.
type ExecResult struct {
	// RowsAffected is the number of rows affected by the statement.
	RowsAffected int64
}

// DBClient is the pg capability client implementation.
type DBClient struct {
	runtime  sdk.RuntimeConfig
	hostCall sdk.HostCall
}

var _ Client = (*DBClient)(nil)

// New creates a pg client.
func New(config Config) (*DBClient, error) {
	runtime := config.SDKConfig
	if runtime.Namespace == "" {
		runtime.Namespace = sdk.DefaultNamespace
	}

	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &DBClient{runtime: runtime, hostCall: hostCall}, nil
}

// Execute runs a statement that produces no rows.
func (c *DBClient) Execute(address, statement string, params []Param) (ExecResult, error) {
	b, err := encodeRequest(address, statement, params)
	if err != nil {
		return ExecResult{}, err
	}

	respBytes, callErr := c.hostCall(c.runtime.Namespace, CapabilityName, FunctionExecute, b)
	if callErr != nil && len(respBytes) == 0 {
		return ExecResult{}, errors.Join(sdk.ErrHostCall, callErr)
	}

	var resp ExecResponse
	if unmarshalErr := resp.Unmarshal(respBytes); unmarshalErr != nil {
		return ExecResult{}, invalidResponse(callErr, unmarshalErr)
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return ExecResult{}, statusErr
	}

	return ExecResult{RowsAffected: resp.RowsAffected}, nil
}

// Query runs a statement and returns its rows. A result with no rows is not an error.
func (c *DBClient) Query(address, statement string, params []Param) (*RowSet, error) {
	b, err := encodeRequest(address, statement, params)
	if err != nil {
		return nil, err
	}

	respBytes, callErr := c.hostCall(c.runtime.Namespace, CapabilityName, FunctionQuery, b)
	if callErr != nil && len(respBytes) == 0 {
		return nil, errors.Join(sdk.ErrHostCall, callErr)
	}

	var resp QueryResponse
	if unmarshalErr := resp.Unmarshal(respBytes); unmarshalErr != nil {
		return nil, invalidResponse(callErr, unmarshalErr)
	}

	if statusErr := validateStatus(resp.Status, callErr); statusErr != nil {
		return nil, statusErr
	}

	rs, err := resp.RowSet()
	if err != nil {
		return nil, errors.Join(sdk.ErrHostResponseInvalid, err)
	}
	return rs, nil
}

// Close releases resources held by the client.
func (c *DBClient) Close() error {
	return nil
}

// encodeRequest validates the request and encodes the host call payload.
func encodeRequest(address, statement string, params []Param) ([]byte, error) {
	if address == "" {
		return nil, ErrInvalidAddress
	}
	if statement == "" {
		return nil, ErrInvalidStatement
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	req := &Request{Address: address, Statement: statement, Params: params}
	b, err := req.Marshal()
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}
	return b, nil
}

func invalidResponse(callErr, unmarshalErr error) error {
	if callErr != nil {
		return errors.Join(
			sdk.ErrHostCall,
			callErr,
			sdk.ErrHostResponseInvalid,
			ErrUnmarshalResponse,
			unmarshalErr,
		)
	}
	return errors.Join(sdk.ErrHostResponseInvalid, ErrUnmarshalResponse, unmarshalErr)
}

func validateStatus(status *sdkproto.Status, callErr error) error {
	if status == nil {
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostResponseInvalid)
		}
		return sdk.ErrHostResponseInvalid
	}

	code := status.GetCode()
	switch code {
	case sdk.StatusOK, sdk.StatusPartial:
		return nil
	case sdk.StatusBadInput, sdk.StatusMissing, sdk.StatusError:
		detail := fmt.Sprintf("host status %d", code)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostError, errors.New(detail))
		}
		return errors.Join(sdk.ErrHostError, errors.New(detail))
	default:
		statusErr := fmt.Errorf("unexpected host status code %d", code)
		if callErr != nil {
			return errors.Join(sdk.ErrHostCall, callErr, sdk.ErrHostResponseInvalid, statusErr)
		}
		return errors.Join(sdk.ErrHostResponseInvalid, statusErr)
	}
}
