package dto

import "encoding/json"

// ErrorResponse accepts both error shapes the backend emits:
// {"error": "message"} and {"error": {"code": "...", "message": "..."}}.
type ErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorMessage extracts the server message from a response body, or "" when absent.
func ErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(resp.Error, &msg); err == nil {
		return msg
	}
	var obj errorObject
	if err := json.Unmarshal(resp.Error, &obj); err == nil {
		return obj.Message
	}
	return ""
}
