package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxFramePayload is the maximum bytes a frame may carry regardless of other
// individual limits imposed by payloads themselves.
const MaxFramePayload = 1024 * 1024 * 32 // 32MB

// frameHeaderSize is the size of the big-endian length prefix.
const frameHeaderSize = 4

var (
	// ErrIncompleteFrame indicates the stream ended in the middle of a
	// frame. The session that reads it must be aborted.
	ErrIncompleteFrame = errors.New("stream ended mid-frame")

	// ErrFrameTooLarge indicates a frame header declared a length above
	// MaxFramePayload. The session that reads it must be aborted.
	ErrFrameTooLarge = errors.New("frame exceeds maximum payload size")
)

// InvalidPayloadError is returned by DecodePayload when a complete frame was
// read but its contents are not a well-formed JSON-RPC payload. The session
// may continue after answering with the carried error code.
type InvalidPayloadError struct {
	// Code is ErrParse for malformed JSON and ErrInvalidRequest for a
	// well-formed JSON value of an unknown or invalid shape.
	Code int
	Raw  string
	Err  error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload (code %d): %s", e.Code, e.Err)
}

func (e *InvalidPayloadError) Unwrap() error {
	return e.Err
}

// InvalidBatchError is returned by DecodePayload when a frame carried a JSON
// array that is empty, mixes requests and responses, or contains
// notifications. The session answers with a synthetic internal-error
// response and continues.
type InvalidBatchError struct {
	Raw string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("invalid batch: %s", e.Raw)
}

// EncodePayload serializes a payload to JSON and prepends the 4-byte
// big-endian length. Batches become arrays, scalars become objects.
func EncodePayload(payload Payload) ([]byte, error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't serialize payload")
	}
	if len(serialized) > MaxFramePayload {
		return nil, errors.WithStack(ErrFrameTooLarge)
	}

	encoded := make([]byte, frameHeaderSize+len(serialized))
	binary.BigEndian.PutUint32(encoded[:frameHeaderSize], uint32(len(serialized)))
	copy(encoded[frameHeaderSize:], serialized)
	return encoded, nil
}

// DecodePayload reads one length-prefixed frame from r and parses it into a
// payload.
//
// It returns io.EOF when the stream ends cleanly before the length header,
// ErrIncompleteFrame when it ends anywhere after the first header byte,
// ErrFrameTooLarge for an oversized header, an *InvalidPayloadError for
// malformed or unclassifiable JSON, and an *InvalidBatchError for a
// non-homogeneous array.
func DecodePayload(r io.Reader) (Payload, error) {
	var header [frameHeaderSize]byte
	_, err := io.ReadFull(r, header[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.WithStack(ErrIncompleteFrame)
		}
		return nil, errors.Wrap(err, "couldn't read frame header")
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFramePayload {
		return nil, errors.WithStack(ErrFrameTooLarge)
	}

	raw := make([]byte, length)
	_, err = io.ReadFull(r, raw)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.WithStack(ErrIncompleteFrame)
		}
		return nil, errors.Wrap(err, "couldn't read frame body")
	}

	return parsePayload(raw)
}

func parsePayload(raw []byte) (Payload, error) {
	var top json.RawMessage
	err := json.Unmarshal(raw, &top)
	if err != nil {
		return nil, &InvalidPayloadError{Code: ErrParse, Raw: string(raw), Err: err}
	}

	if len(top) > 0 && top[0] == '[' {
		return parseBatch(top)
	}
	payload, err := parseObject(top)
	if err != nil {
		return nil, &InvalidPayloadError{Code: ErrInvalidRequest, Raw: string(raw), Err: err}
	}
	return payload, nil
}

// parseObject classifies a JSON object by field presence, in order: a method
// with an id is a Request, a method alone is a Notification, a result or
// error is a Response, anything else is an error.
func parseObject(raw json.RawMessage) (Payload, error) {
	var fields map[string]json.RawMessage
	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return nil, errors.Wrap(err, "payload is not a JSON object")
	}

	_, hasMethod := fields["method"]
	_, hasID := fields["id"]
	_, hasResult := fields["result"]
	_, hasError := fields["error"]

	switch {
	case hasMethod && hasID:
		request := &Request{}
		err = json.Unmarshal(raw, request)
		if err != nil {
			return nil, errors.Wrap(err, "malformed request")
		}
		err = request.validate()
		if err != nil {
			return nil, err
		}
		return request, nil

	case hasMethod:
		notification := &Notification{}
		err = json.Unmarshal(raw, notification)
		if err != nil {
			return nil, errors.Wrap(err, "malformed notification")
		}
		err = notification.validate()
		if err != nil {
			return nil, err
		}
		return notification, nil

	case hasResult || hasError:
		response := &Response{}
		err = unmarshalResponse(raw, response)
		if err != nil {
			return nil, errors.Wrap(err, "malformed response")
		}
		if hasResult && hasError {
			return nil, errors.New("response carries both result and error")
		}
		err = response.validate()
		if err != nil {
			return nil, err
		}
		return response, nil

	default:
		return nil, errors.New("unknown RPC object shape")
	}
}

func unmarshalResponse(raw json.RawMessage, response *Response) error {
	var shape struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      *string     `json:"id"`
		Result  interface{} `json:"result"`
		Error   *RPCError   `json:"error"`
	}
	err := json.Unmarshal(raw, &shape)
	if err != nil {
		return err
	}
	response.JSONRPC = shape.JSONRPC
	response.ID = shape.ID
	response.Result = shape.Result
	response.Error = shape.Error
	return nil
}

// parseBatch parses a JSON array into a Batch. The batch is well-formed only
// if it is non-empty and every element is a Request or every element is a
// Response.
func parseBatch(raw json.RawMessage) (Payload, error) {
	var elements []json.RawMessage
	err := json.Unmarshal(raw, &elements)
	if err != nil {
		return nil, &InvalidPayloadError{Code: ErrParse, Raw: string(raw), Err: err}
	}
	if len(elements) == 0 {
		return nil, &InvalidBatchError{Raw: string(raw)}
	}

	batch := make(Batch, 0, len(elements))
	requests, responses := 0, 0
	for _, element := range elements {
		payload, err := parseObject(element)
		if err != nil {
			return nil, &InvalidBatchError{Raw: string(raw)}
		}
		switch payload.(type) {
		case *Request:
			requests++
		case *Response:
			responses++
		default:
			return nil, &InvalidBatchError{Raw: string(raw)}
		}
		batch = append(batch, payload)
	}
	if requests > 0 && responses > 0 {
		return nil, &InvalidBatchError{Raw: string(raw)}
	}
	return batch, nil
}
