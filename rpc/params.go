package rpc

import (
	"fmt"

	"github.com/kyprware/synapse/wire"
)

// The helpers below bridge a request's params map to typed handler
// arguments. A missing required name or a wrong type is an invalid-params
// error.

func invalidParams(format string, a ...interface{}) *wire.RPCError {
	return &wire.RPCError{
		Code:    wire.ErrInvalidParams,
		Message: fmt.Sprintf("Invalid params: %s", fmt.Sprintf(format, a...)),
	}
}

func stringParam(params map[string]interface{}, name string) (string, *wire.RPCError) {
	value, ok := params[name]
	if !ok {
		return "", invalidParams("missing required parameter '%s'", name)
	}
	s, ok := value.(string)
	if !ok {
		return "", invalidParams("parameter '%s' must be a string", name)
	}
	return s, nil
}

func optionalStringParam(params map[string]interface{}, name string) (*string, *wire.RPCError) {
	value, ok := params[name]
	if !ok || value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, invalidParams("parameter '%s' must be a string", name)
	}
	return &s, nil
}

func optionalBoolParam(params map[string]interface{}, name string, defaultValue bool) (bool, *wire.RPCError) {
	value, ok := params[name]
	if !ok || value == nil {
		return defaultValue, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, invalidParams("parameter '%s' must be a boolean", name)
	}
	return b, nil
}

func optionalIntParam(params map[string]interface{}, name string, defaultValue int) (int, *wire.RPCError) {
	value, ok := params[name]
	if !ok || value == nil {
		return defaultValue, nil
	}
	// JSON numbers decode as float64.
	f, ok := value.(float64)
	if !ok {
		return 0, invalidParams("parameter '%s' must be an integer", name)
	}
	i := int(f)
	if float64(i) != f {
		return 0, invalidParams("parameter '%s' must be an integer", name)
	}
	return i, nil
}

func objectParam(params map[string]interface{}, name string) (map[string]interface{}, *wire.RPCError) {
	value, ok := params[name]
	if !ok {
		return nil, invalidParams("missing required parameter '%s'", name)
	}
	obj, ok := value.(map[string]interface{})
	if !ok {
		return nil, invalidParams("parameter '%s' must be an object", name)
	}
	return obj, nil
}
