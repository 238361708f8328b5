package pg

import (
	"errors"
	"fmt"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireFormat indicates a pg capability payload that cannot be decoded.
var ErrWireFormat = errors.New("malformed pg wire payload")

// Request is the payload of both the execute and query host functions.
//
//	Request  { 1: address string; 2: statement string; 3: repeated Param }
//	Param    { 1: data_type string; 2: null bool; 3: data bytes }
type Request struct {
	Address   string
	Statement string
	Params    []Param
}

// ExecResponse is the host reply to execute.
//
//	ExecResponse { 1: status sdk.Status; 2: rows_affected int64 }
type ExecResponse struct {
	Status       *sdkproto.Status
	RowsAffected int64
}

// QueryResponse is the host reply to query.
//
//	QueryResponse { 1: status sdk.Status; 2: repeated Column; 3: repeated Row }
//	Column        { 1: name string; 2: data_type string }
//	Row           { 1: repeated Cell }
//	Cell          { 1: null bool; 2: data bytes }
type QueryResponse struct {
	Status  *sdkproto.Status
	Columns []Column
	Rows    []Row
}

// Marshal encodes the request.
func (r *Request) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, r.Address)
	b = appendString(b, 2, r.Statement)
	for _, p := range r.Params {
		var pb []byte
		pb = appendString(pb, 1, p.DataType.String())
		pb = appendCellFields(pb, 2, 3, p.Value)
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, pb)
	}
	return b, nil
}

// Unmarshal decodes a request produced by Marshal.
func (r *Request) Unmarshal(b []byte) error {
	*r = Request{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			r.Address = string(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			r.Statement = string(v)
			return n, err
		case 3:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			p, err := unmarshalParam(v)
			if err != nil {
				return n, err
			}
			r.Params = append(r.Params, p)
			return n, nil
		}
		return 0, nil
	})
}

func unmarshalParam(b []byte) (Param, error) {
	var p Param
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			p.DataType = ParseDataType(string(v))
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			p.Value.Null = protowire.DecodeBool(v)
			return n, err
		case 3:
			v, n, err := consumeBytes(typ, b)
			p.Value.Data = append([]byte{}, v...)
			return n, err
		}
		return 0, nil
	})
	if p.Value.Null {
		p.Value.Data = nil
	}
	return p, err
}

// Marshal encodes the response.
func (r *ExecResponse) Marshal() ([]byte, error) {
	b, err := appendStatus(nil, r.Status)
	if err != nil {
		return nil, err
	}
	if r.RowsAffected != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.RowsAffected))
	}
	return b, nil
}

// Unmarshal decodes a response produced by Marshal.
func (r *ExecResponse) Unmarshal(b []byte) error {
	*r = ExecResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			st, n, err := consumeStatus(typ, b)
			r.Status = st
			return n, err
		case 2:
			v, n, err := consumeVarint(typ, b)
			r.RowsAffected = int64(v)
			return n, err
		}
		return 0, nil
	})
}

// Marshal encodes the response.
func (r *QueryResponse) Marshal() ([]byte, error) {
	b, err := appendStatus(nil, r.Status)
	if err != nil {
		return nil, err
	}
	for _, c := range r.Columns {
		var cb []byte
		cb = appendString(cb, 1, c.Name)
		cb = appendString(cb, 2, c.DataType.String())
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, cb)
	}
	for _, row := range r.Rows {
		var rb []byte
		for _, cell := range row {
			rb = protowire.AppendTag(rb, 1, protowire.BytesType)
			rb = protowire.AppendBytes(rb, appendCellFields(nil, 1, 2, cell))
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, rb)
	}
	return b, nil
}

// Unmarshal decodes a response produced by Marshal.
func (r *QueryResponse) Unmarshal(b []byte) error {
	*r = QueryResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			st, n, err := consumeStatus(typ, b)
			r.Status = st
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			c, err := unmarshalColumn(v)
			r.Columns = append(r.Columns, c)
			return n, err
		case 3:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return n, err
			}
			row, err := unmarshalRow(v)
			r.Rows = append(r.Rows, row)
			return n, err
		}
		return 0, nil
	})
}

// RowSet validates the response rows and returns them as a RowSet.
func (r *QueryResponse) RowSet() (*RowSet, error) {
	return NewRowSet(r.Columns, r.Rows)
}

func unmarshalColumn(b []byte) (Column, error) {
	var c Column
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			c.Name = string(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			c.DataType = ParseDataType(string(v))
			return n, err
		}
		return 0, nil
	})
	return c, err
}

func unmarshalRow(b []byte) (Row, error) {
	row := Row{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		v, n, err := consumeBytes(typ, b)
		if err != nil {
			return n, err
		}
		cell, err := unmarshalCell(v)
		row = append(row, cell)
		return n, err
	})
	return row, err
}

func unmarshalCell(b []byte) (Cell, error) {
	var c Cell
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			c.Null = protowire.DecodeBool(v)
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			c.Data = append([]byte{}, v...)
			return n, err
		}
		return 0, nil
	})
	if c.Null {
		c.Data = nil
	}
	return c, err
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendCellFields(b []byte, nullNum, dataNum protowire.Number, c Cell) []byte {
	if c.Null {
		b = protowire.AppendTag(b, nullNum, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	b = protowire.AppendTag(b, dataNum, protowire.BytesType)
	return protowire.AppendBytes(b, c.Data)
}

func appendStatus(b []byte, st *sdkproto.Status) ([]byte, error) {
	if st == nil {
		return b, nil
	}
	sb, err := st.MarshalVT()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	return protowire.AppendBytes(b, sb), nil
}

// consumeFields walks the fields of one message. visit returns the number of
// bytes it consumed, or 0 to have the field skipped.
func consumeFields(b []byte, visit func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Join(ErrWireFormat, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return errors.Join(ErrWireFormat, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("%w: expected length-delimited field, got wire type %d", ErrWireFormat, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, errors.Join(ErrWireFormat, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("%w: expected varint field, got wire type %d", ErrWireFormat, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, errors.Join(ErrWireFormat, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeStatus(typ protowire.Type, b []byte) (*sdkproto.Status, int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return nil, n, err
	}
	st := &sdkproto.Status{}
	if err := st.UnmarshalVT(v); err != nil {
		return nil, n, errors.Join(ErrWireFormat, err)
	}
	return st, n, nil
}
