package wire

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// JSONRPCVersion is the only protocol version the hub speaks.
const JSONRPCVersion = "2.0"

// Reserved JSON-RPC 2.0 error codes produced by the hub, plus the custom
// server-error codes used by the built-in handlers.
const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	ErrCreateApplication = -32000
	ErrReadApplication   = -32001
	ErrUpdateApplication = -32002
	ErrDeleteApplication = -32003
	ErrInvalidAction     = -32004
	ErrGrantPermission   = -32005
	ErrRevokePermission  = -32006
)

// Payload is the tagged union of everything that travels in a frame: a
// Request, a Notification, a Response, or a homogeneous Batch thereof.
type Payload interface {
	rpcPayload()
}

// Request is a JSON-RPC 2.0 request. Its id is a non-null UUID string.
type Request struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      string                 `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func (r *Request) rpcPayload() {}

// Notification is a JSON-RPC 2.0 notification. It carries no id and expects
// no response.
type Notification struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func (n *Notification) rpcPayload() {}

// RPCError is the error object of a JSON-RPC 2.0 response.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Response is a JSON-RPC 2.0 response. It carries exactly one of Result or
// Error. A nil ID serializes as null and is permitted for protocol errors
// only.
type Response struct {
	JSONRPC string
	ID      *string
	Result  interface{}
	Error   *RPCError
}

func (r *Response) rpcPayload() {}

// MarshalJSON serializes the response with the result field present whenever
// the error field is absent, so a success response always carries its result
// key even when the result is null.
func (r *Response) MarshalJSON() ([]byte, error) {
	obj := map[string]interface{}{
		"jsonrpc": r.JSONRPC,
		"id":      r.ID,
	}
	if r.Error != nil {
		obj["error"] = r.Error
	} else {
		obj["result"] = r.Result
	}
	return json.Marshal(obj)
}

// Batch is a non-empty array of Requests or of Responses. Decoding guarantees
// homogeneity; notifications never appear in a batch.
type Batch []Payload

func (b Batch) rpcPayload() {}

// NewRequest returns a validated request.
func NewRequest(id string, method string, params map[string]interface{}) (*Request, error) {
	request := &Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
	err := request.validate()
	if err != nil {
		return nil, err
	}
	return request, nil
}

// NewNotification returns a validated notification.
func NewNotification(method string, params map[string]interface{}) (*Notification, error) {
	notification := &Notification{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
	err := notification.validate()
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// NewResponse returns a success response carrying the given result.
func NewResponse(id *string, result interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse returns an error response carrying the given error object.
func NewErrorResponse(id *string, rpcErr *RPCError) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   rpcErr,
	}
}

// ValidErrorCode reports whether code lies in the JSON-RPC 2.0 reserved set
// or the server-error band.
func ValidErrorCode(code int) bool {
	if code == ErrParse {
		return true
	}
	if code >= ErrInternal && code <= ErrInvalidRequest {
		return true
	}
	return code >= -32099 && code <= -32000
}

func validateVersion(version string) error {
	if version != JSONRPCVersion {
		return errors.Errorf("jsonrpc must be %q, got %q", JSONRPCVersion, version)
	}
	return nil
}

func validateID(id string) error {
	_, err := uuid.Parse(id)
	if err != nil {
		return errors.Wrapf(err, "id %q is not a valid UUID", id)
	}
	return nil
}

func (r *Request) validate() error {
	err := validateVersion(r.JSONRPC)
	if err != nil {
		return err
	}
	if r.Method == "" {
		return errors.New("request method must not be empty")
	}
	return validateID(r.ID)
}

func (n *Notification) validate() error {
	err := validateVersion(n.JSONRPC)
	if err != nil {
		return err
	}
	if n.Method == "" {
		return errors.New("notification method must not be empty")
	}
	return nil
}

func (r *Response) validate() error {
	err := validateVersion(r.JSONRPC)
	if err != nil {
		return err
	}
	if r.ID != nil {
		err = validateID(*r.ID)
		if err != nil {
			return err
		}
	}
	if r.Error != nil {
		if r.Result != nil {
			return errors.New("response must carry exactly one of result or error")
		}
		if !ValidErrorCode(r.Error.Code) {
			return errors.Errorf("error code %d is outside the reserved set", r.Error.Code)
		}
		if r.Error.Message == "" {
			return errors.New("error message must not be empty")
		}
	}
	return nil
}
