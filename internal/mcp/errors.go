package mcp

import (
	"context"
	"errors"
	"fmt"

	"cemcp/internal/codeengine"
)

const (
	NotInitializedMessage = "Error: Code Engine client not initialized. Please check your IBM Cloud API key."
	unknownToolFormat     = "Unknown tool: %s"
)

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
}

func classifyError(err error) ErrorDetail {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if errors.Is(err, errNotInitialized) {
		return ErrorDetail{Code: "not_initialized", Message: msg, Hint: "Set IBMCLOUD_API_KEY and restart the server.", Retryable: false}
	}
	var unknown unknownToolError
	if errors.As(err, &unknown) {
		return ErrorDetail{Code: "unknown_tool", Message: msg, Hint: "List tools to see the available names.", Retryable: false}
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return ErrorDetail{Code: "invalid_arguments", Message: msg, Hint: "Check the tool's input schema.", Retryable: false}
	}
	var apiErr *codeengine.Error
	if errors.As(err, &apiErr) {
		detail := ErrorDetail{Code: string(apiErr.Kind), Message: msg}
		switch apiErr.Kind {
		case codeengine.KindNotFound:
			detail.Hint = "Verify the project id and resource name."
		case codeengine.KindUnauthenticated:
			detail.Hint = "Check the IBM Cloud API key and its access to Code Engine."
		case codeengine.KindRateLimited:
			detail.Hint = "Request rate exceeded; retry later."
			detail.Retryable = true
		case codeengine.KindInvalidArgument:
			detail.Hint = "Fix the request parameters."
		default:
			detail.Hint = "Check network access to the Code Engine API."
			detail.Retryable = true
		}
		if errors.Is(err, context.DeadlineExceeded) {
			detail.Hint = "Increase the tool timeout or check API latency."
		}
		return detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorDetail{Code: "timeout", Message: msg, Hint: "Increase the tool timeout or check API latency.", Retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return ErrorDetail{Code: "canceled", Message: msg, Hint: "Request was canceled before completion.", Retryable: true}
	}
	return ErrorDetail{Code: "internal", Message: msg, Hint: "Check server logs for details.", Retryable: false}
}

// errorText renders a handler failure as the soft-error text returned to the
// caller.
func errorText(err error) string {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return argErr.Error()
	}
	var unknown unknownToolError
	if errors.Is(err, errNotInitialized) || errors.As(err, &unknown) {
		return err.Error()
	}
	detail := classifyError(err)
	var apiErr *codeengine.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("API error: %s\nHint: %s", apiErr.Error(), detail.Hint)
	}
	return "Unexpected error: " + detail.Message
}

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("tool panicked: %v", e.value)
}
