package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// decodeError turns a non-2xx response into a *model.ServerError carrying the
// service's own message.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	return &model.ServerError{
		Status:  resp.StatusCode,
		Message: errorMessage(raw, resp.StatusCode),
	}
}

func errorMessage(raw []byte, status int) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg := detailMessage(body.Detail); msg != "" {
			return msg
		}
		if body.Message != "" {
			return body.Message
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}

	return http.StatusText(status)
}

func detailMessage(detail json.RawMessage) string {
	if len(detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(detail, &s); err == nil {
		return s
	}

	var issues []validationIssue
	if err := json.Unmarshal(detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
