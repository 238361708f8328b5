package pg

import (
	"bytes"
	"errors"
	"testing"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRequest_RoundTrip(t *testing.T) {
	t.Parallel()

	in := Request{
		Address:   "postgres://localhost/db",
		Statement: "INSERT INTO t VALUES ($1, $2, $3)",
		Params:    []Param{BoolParam(true), BytesParam([]byte{0x7e}), NullParam(DataTypeText), TextParam("")},
	}

	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var out Request
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if out.Address != in.Address || out.Statement != in.Statement {
		t.Fatalf("unexpected request %+v", out)
	}
	if len(out.Params) != len(in.Params) {
		t.Fatalf("want %d params, got %d", len(in.Params), len(out.Params))
	}
	for i := range in.Params {
		if out.Params[i].DataType != in.Params[i].DataType ||
			out.Params[i].Value.Null != in.Params[i].Value.Null ||
			!bytes.Equal(out.Params[i].Value.Data, in.Params[i].Value.Data) {
			t.Errorf("param %d: want %+v, got %+v", i, in.Params[i], out.Params[i])
		}
	}
}

func TestQueryResponse_RoundTrip(t *testing.T) {
	t.Parallel()

	in := QueryResponse{
		Status: &sdkproto.Status{Status: "OK", Code: 200},
		Columns: []Column{
			{Name: "rbool", DataType: DataTypeBool},
			{Name: "obool", DataType: DataTypeBool},
			{Name: "rbytea", DataType: DataTypeBytea},
		},
		Rows: []Row{
			{BoolCell(true), NullCell(), BytesCell([]byte{0x7e})},
			{BoolCell(false), BoolCell(true), BytesCell(nil)},
		},
	}

	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var out QueryResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if out.Status.GetCode() != 200 || out.Status.GetStatus() != "OK" {
		t.Fatalf("unexpected status %+v", out.Status)
	}

	rs, err := out.RowSet()
	if err != nil {
		t.Fatalf("RowSet returned error: %v", err)
	}
	if rs.ColumnSummary() != "rbool:bool, obool:bool, rbytea:bytea" {
		t.Fatalf("unexpected columns %q", rs.ColumnSummary())
	}
	if rs.Len() != 2 {
		t.Fatalf("want 2 rows, got %d", rs.Len())
	}

	if row, _ := rs.Row(0); !row[1].Null || !bytes.Equal(row[2].Data, []byte{0x7e}) {
		t.Fatalf("unexpected first row %+v", row)
	}
	if row, _ := rs.Row(1); row[1].Null || len(row[2].Data) != 0 || row[2].Null {
		t.Fatalf("unexpected second row %+v", row)
	}
}

func TestQueryResponse_UnknownTypeSurvives(t *testing.T) {
	t.Parallel()

	in := QueryResponse{
		Status:  &sdkproto.Status{Code: 200},
		Columns: []Column{{Name: "n", DataType: DataTypeUnknown}},
		Rows:    []Row{{Cell{Data: []byte{0, 0}}}},
	}
	b, _ := in.Marshal()

	var out QueryResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("unknown column types must decode, got %v", err)
	}
	if out.Columns[0].DataType != DataTypeUnknown {
		t.Fatalf("unexpected type %s", out.Columns[0].DataType)
	}
}

func TestQueryResponse_RaggedRows(t *testing.T) {
	t.Parallel()

	in := QueryResponse{
		Status:  &sdkproto.Status{Code: 200},
		Columns: []Column{{Name: "a", DataType: DataTypeInt4}, {Name: "b", DataType: DataTypeInt4}},
		Rows:    []Row{{Int32Cell(1)}},
	}
	b, _ := in.Marshal()

	var out QueryResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if _, err := out.RowSet(); !errors.Is(err, ErrRowLength) {
		t.Fatalf("expected ErrRowLength, got %v", err)
	}
}

func TestExecResponse_RoundTrip(t *testing.T) {
	t.Parallel()

	in := ExecResponse{Status: &sdkproto.Status{Status: "OK", Code: 200}, RowsAffected: 3}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var out ExecResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out.RowsAffected != 3 || out.Status.GetCode() != 200 {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	t.Parallel()

	truncated := protowire.AppendTag(nil, 1, protowire.BytesType)
	truncated = protowire.AppendVarint(truncated, 10)

	wrongType := protowire.AppendTag(nil, 1, protowire.VarintType)
	wrongType = protowire.AppendVarint(wrongType, 1)

	tt := []struct {
		name    string
		payload []byte
	}{
		{name: "truncated", payload: truncated},
		{name: "wrong wire type", payload: wrongType},
		{name: "garbage", payload: []byte{0xff, 0xff, 0xff}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var q QueryResponse
			if err := q.Unmarshal(tc.payload); !errors.Is(err, ErrWireFormat) {
				t.Errorf("QueryResponse: expected ErrWireFormat, got %v", err)
			}
			var r Request
			if err := r.Unmarshal(tc.payload); !errors.Is(err, ErrWireFormat) {
				t.Errorf("Request: expected ErrWireFormat, got %v", err)
			}
		})
	}
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	t.Parallel()

	b, _ := (&ExecResponse{Status: &sdkproto.Status{Code: 200}, RowsAffected: 1}).Marshal()
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	var out ExecResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out.RowsAffected != 1 {
		t.Fatalf("unexpected response %+v", out)
	}
}
