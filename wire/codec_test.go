package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

// TestPayloadRoundTrip tests that decode(encode(p)) reproduces every
// well-formed payload, modulo omission of absent optional fields.
func TestPayloadRoundTrip(t *testing.T) {
	requestID := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"
	responseID := "b02bd6a3-3eb1-4b2a-92b8-2b53a8b7e287"

	tests := []struct {
		name    string
		payload Payload
	}{
		{
			name: "request with params",
			payload: &Request{
				JSONRPC: JSONRPCVersion,
				ID:      requestID,
				Method:  "check_has_permission",
				Params: map[string]interface{}{
					"owner_id": "a1",
					"limit":    float64(10),
				},
			},
		},
		{
			name: "request without params",
			payload: &Request{
				JSONRPC: JSONRPCVersion,
				ID:      requestID,
				Method:  "list_applications",
			},
		},
		{
			name: "notification",
			payload: &Notification{
				JSONRPC: JSONRPCVersion,
				Method:  "wake",
				Params:  map[string]interface{}{"reason": "deploy"},
			},
		},
		{
			name:    "success response",
			payload: NewResponse(&responseID, map[string]interface{}{"has_permission": false}),
		},
		{
			name: "error response with null id",
			payload: NewErrorResponse(nil, &RPCError{
				Code:    ErrParse,
				Message: "Parse error",
			}),
		},
		{
			name: "request batch",
			payload: Batch{
				&Request{JSONRPC: JSONRPCVersion, ID: requestID, Method: "a"},
				&Request{JSONRPC: JSONRPCVersion, ID: responseID, Method: "b"},
			},
		},
		{
			name: "response batch",
			payload: Batch{
				NewResponse(&requestID, "first"),
				NewErrorResponse(&responseID, &RPCError{Code: ErrInternal, Message: "Internal error"}),
			},
		},
	}

	for _, test := range tests {
		encoded, err := EncodePayload(test.payload)
		if err != nil {
			t.Errorf("%s: EncodePayload: unexpected error %v", test.name, err)
			continue
		}

		decoded, err := DecodePayload(bytes.NewReader(encoded))
		if err != nil {
			t.Errorf("%s: DecodePayload: unexpected error %v", test.name, err)
			continue
		}

		if !reflect.DeepEqual(decoded, test.payload) {
			t.Errorf("%s: round trip mismatch - got %+v, want %+v",
				test.name, decoded, test.payload)
		}
	}
}

// TestEncodeFrameHeader tests that the encoded frame carries a 4-byte
// big-endian length prefix over exactly the serialized JSON.
func TestEncodeFrameHeader(t *testing.T) {
	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"
	encoded, err := EncodePayload(NewResponse(&id, "ok"))
	if err != nil {
		t.Fatalf("EncodePayload: unexpected error %v", err)
	}

	length := binary.BigEndian.Uint32(encoded[:4])
	if int(length) != len(encoded)-4 {
		t.Errorf("frame header declares %d bytes, frame body has %d",
			length, len(encoded)-4)
	}
	if !json.Valid(encoded[4:]) {
		t.Errorf("frame body is not valid JSON: %s", encoded[4:])
	}
}

// TestResponseSerialization tests that a response carries exactly one of
// result or error on the wire, and that a null id stays present.
func TestResponseSerialization(t *testing.T) {
	serialized, err := json.Marshal(NewErrorResponse(nil, &RPCError{
		Code:    ErrInternal,
		Message: "Internal error",
	}))
	if err != nil {
		t.Fatalf("Marshal: unexpected error %v", err)
	}

	fields := map[string]json.RawMessage{}
	err = json.Unmarshal(serialized, &fields)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error %v", err)
	}
	if string(fields["id"]) != "null" {
		t.Errorf("error response id - got %s, want null", fields["id"])
	}
	if _, ok := fields["result"]; ok {
		t.Errorf("error response carries a result field: %s", serialized)
	}

	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"
	serialized, err = json.Marshal(NewResponse(&id, nil))
	if err != nil {
		t.Fatalf("Marshal: unexpected error %v", err)
	}
	fields = map[string]json.RawMessage{}
	err = json.Unmarshal(serialized, &fields)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error %v", err)
	}
	if _, ok := fields["result"]; !ok {
		t.Errorf("success response dropped its result field: %s", serialized)
	}
	if _, ok := fields["error"]; ok {
		t.Errorf("success response carries an error field: %s", serialized)
	}
}

func frame(body string) []byte {
	framed := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(framed[:4], uint32(len(body)))
	copy(framed[4:], body)
	return framed
}

// TestDecodeClassification tests the field-presence classification order.
func TestDecodeClassification(t *testing.T) {
	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"

	tests := []struct {
		name string
		body string
		want interface{}
	}{
		{
			name: "method and id is a request",
			body: `{"jsonrpc":"2.0","id":"` + id + `","method":"x"}`,
			want: &Request{},
		},
		{
			name: "method alone is a notification",
			body: `{"jsonrpc":"2.0","method":"x"}`,
			want: &Notification{},
		},
		{
			name: "result is a response",
			body: `{"jsonrpc":"2.0","id":"` + id + `","result":42}`,
			want: &Response{},
		},
		{
			name: "error is a response",
			body: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`,
			want: &Response{},
		},
	}

	for _, test := range tests {
		payload, err := DecodePayload(bytes.NewReader(frame(test.body)))
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if reflect.TypeOf(payload) != reflect.TypeOf(test.want) {
			t.Errorf("%s: wrong payload type - got %T, want %T",
				test.name, payload, test.want)
		}
	}
}

// TestDecodeInvalidPayloads tests the recoverable decode failure modes and
// their error codes.
func TestDecodeInvalidPayloads(t *testing.T) {
	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "malformed JSON", body: `{"jsonrpc":`, wantCode: ErrParse},
		{name: "unknown shape", body: `{"jsonrpc":"2.0","id":"` + id + `"}`, wantCode: ErrInvalidRequest},
		{name: "wrong version", body: `{"jsonrpc":"1.0","id":"` + id + `","method":"x"}`, wantCode: ErrInvalidRequest},
		{name: "null request id", body: `{"jsonrpc":"2.0","id":null,"method":"x"}`, wantCode: ErrInvalidRequest},
		{name: "non-UUID request id", body: `{"jsonrpc":"2.0","id":"req-1","method":"x"}`, wantCode: ErrInvalidRequest},
		{name: "positional params", body: `{"jsonrpc":"2.0","id":"` + id + `","method":"x","params":[1,2]}`, wantCode: ErrInvalidRequest},
		{name: "error code outside the reserved set", body: `{"jsonrpc":"2.0","id":null,"error":{"code":-1,"message":"m"}}`, wantCode: ErrInvalidRequest},
		{name: "result and error together", body: `{"jsonrpc":"2.0","id":null,"result":1,"error":{"code":-32603,"message":"m"}}`, wantCode: ErrInvalidRequest},
		{name: "non-object payload", body: `42`, wantCode: ErrInvalidRequest},
	}

	for _, test := range tests {
		_, err := DecodePayload(bytes.NewReader(frame(test.body)))
		var invalidPayloadErr *InvalidPayloadError
		if !errors.As(err, &invalidPayloadErr) {
			t.Errorf("%s: expected an InvalidPayloadError, got %v", test.name, err)
			continue
		}
		if invalidPayloadErr.Code != test.wantCode {
			t.Errorf("%s: wrong code - got %d, want %d",
				test.name, invalidPayloadErr.Code, test.wantCode)
		}
	}
}

// TestDecodeInvalidBatches tests that mixed, notification-containing, and
// empty batches surface as batch errors.
func TestDecodeInvalidBatches(t *testing.T) {
	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"

	tests := []struct {
		name string
		body string
	}{
		{
			name: "mixed requests and responses",
			body: `[{"jsonrpc":"2.0","id":"` + id + `","method":"x"},` +
				`{"jsonrpc":"2.0","id":"` + id + `","result":42}]`,
		},
		{
			name: "notification in a batch",
			body: `[{"jsonrpc":"2.0","method":"x"}]`,
		},
		{name: "empty batch", body: `[]`},
		{name: "non-object element", body: `[42]`},
	}

	for _, test := range tests {
		_, err := DecodePayload(bytes.NewReader(frame(test.body)))
		var invalidBatchErr *InvalidBatchError
		if !errors.As(err, &invalidBatchErr) {
			t.Errorf("%s: expected an InvalidBatchError, got %v", test.name, err)
		}
	}
}

// TestDecodeStreamEnds tests the frame-boundary failure modes.
func TestDecodeStreamEnds(t *testing.T) {
	// A stream that ends cleanly before the header is the end of the
	// session.
	_, err := DecodePayload(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Errorf("empty stream: got %v, want io.EOF", err)
	}

	// A stream that ends inside the header is a protocol error.
	_, err = DecodePayload(bytes.NewReader([]byte{0x00, 0x00}))
	if !errors.Is(err, ErrIncompleteFrame) {
		t.Errorf("partial header: got %v, want ErrIncompleteFrame", err)
	}

	// A stream that ends inside the body is a protocol error.
	framed := frame(`{"jsonrpc":"2.0","method":"x"}`)
	_, err = DecodePayload(bytes.NewReader(framed[:len(framed)-5]))
	if !errors.Is(err, ErrIncompleteFrame) {
		t.Errorf("truncated body: got %v, want ErrIncompleteFrame", err)
	}

	// An oversized header aborts the session.
	var oversized [4]byte
	binary.BigEndian.PutUint32(oversized[:], MaxFramePayload+1)
	_, err = DecodePayload(bytes.NewReader(oversized[:]))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversized header: got %v, want ErrFrameTooLarge", err)
	}
}
