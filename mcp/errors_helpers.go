package mcp

import "errors"

func IsRPCError(err error) bool {
	var e *RPCError
	return errors.As(err, &e)
}

func IsInitError(err error) bool {
	var e *ClientError
	if errors.As(err, &e) {
		return e.Op == "initialize"
	}
	return false
}

func IsCallToolError(err error) bool {
	var e *CallToolError
	if errors.As(err, &e) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Method == "tools/call"
}

func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsStartError reports whether the server subprocess could not be launched
// (missing interpreter, binary not found, not executable). The start failure
// may be nested under initialize and request errors when Dial started the
// process lazily, so every ClientError in the chain is checked.
func IsStartError(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if ce, ok := err.(*ClientError); ok && ce.Op == "start" {
			return true
		}
	}
	return false
}
