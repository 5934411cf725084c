// internal/dispatch/schema.go
package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/models"
)

// submissionSchema is the wire contract for POST /v1/notifications. Semantic
// rules beyond shape (tenant existence, preferences, template ownership) are
// enforced by Dispatcher.Submit.
const submissionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["app_id", "channel"],
  "additionalProperties": false,
  "properties": {
    "app_id":          {"type": "string", "minLength": 1},
    "user_id":         {"type": "string"},
    "template_id":     {"type": "string"},
    "channel":         {"type": "string", "enum": ["webhook", "sse", "email", "sms"]},
    "priority":        {"type": "string", "enum": ["low", "normal", "high"]},
    "category":        {"type": "string"},
    "subject":         {"type": "string"},
    "body":            {"type": "string"},
    "bindings":        {"type": "object", "additionalProperties": {"type": "string"}},
    "idempotency_key": {"type": "string"},
    "override_url":    {"type": "string", "format": "uri"},
    "override_channel": {"type": "boolean"}
  }
}`

var submissionSchemaLoader = gojsonschema.NewStringLoader(submissionSchema)

// ParseSubmission validates the raw request body against the submission
// schema and decodes it.
func ParseSubmission(body []byte) (*models.SendRequest, error) {
	result, err := gojsonschema.Validate(submissionSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, commonerrors.NewValidationFailedError("malformed JSON: " + err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, commonerrors.NewValidationFailedError(strings.Join(details, "; "))
	}

	var req models.SendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, commonerrors.NewValidationFailedError(err.Error())
	}
	return &req, nil
}
