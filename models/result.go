// models/result.go
package models

import "encoding/json"

// Result is the uniform outcome every gateway call resolves to. Gateway
// functions never return a Go error to controllers; failures are folded in
// here so the rendering layer only ever branches on Success.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Ok builds a successful result with an optional message.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed result carrying a user-facing message.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// Standard user-facing messages. Auth and connection failures always use
// these exact strings so the UI stays consistent across resources.
const (
	MsgUnauthorized    = "Não autorizado. Faça login novamente."
	MsgConnectionError = "Erro ao conectar com o servidor"
)

// Unauthorized is the short-circuit result for calls made without a session
// token. No upstream request is attempted.
func Unauthorized() Result {
	return Fail(MsgUnauthorized)
}

// ConnectionError is the result for transport-level failures (DNS, refused
// connection, timeout, malformed body). The underlying error is logged, not
// surfaced.
func ConnectionError() Result {
	return Fail(MsgConnectionError)
}

// RawResult carries an upstream payload the panel passes through untouched
// (dashboard aggregates, chart series).
type RawResult struct {
	Result
	Data json.RawMessage `json:"data,omitempty"`
}
