package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"whitelist-bot/internal/common/errors"
)

// intakePayloadSchema is the structural contract for the webhook body:
// a JSON object whose known keys, when present, are strings. Unknown
// keys are tolerated so upstream automation can evolve first.
const intakePayloadSchema = `{
	"type": "object",
	"properties": {
		"user_id":      {"type": "string"},
		"char_name":    {"type": "string"},
		"real_age":     {"type": "string"},
		"steam_link":   {"type": "string"},
		"sheet_row":    {"type": "string"},
		"avatar_url":   {"type": "string"},
		"ai_summary":   {"type": "string"},
		"ai_decision":  {"type": "string"},
		"ai_context":   {"type": "string"},
		"ai_red_flags": {"type": "string"}
	},
	"additionalProperties": true
}`

// IntakeValidator validates inbound application payloads.
type IntakeValidator struct {
	schema gojsonschema.JSONLoader
}

func NewIntakeValidator() *IntakeValidator {
	return &IntakeValidator{
		schema: gojsonschema.NewStringLoader(intakePayloadSchema),
	}
}

// Validate checks the raw request body against the intake schema.
// Any failure, including unparseable JSON, is a PAYLOAD_INVALID error
// with no side effect.
func (v *IntakeValidator) Validate(body []byte) *errors.StandardError {
	document := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(v.schema, document)
	if err != nil {
		return errors.NewPayloadInvalidError(fmt.Sprintf("parse error: %v", err))
	}

	if !result.Valid() {
		descs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			descs[i] = desc.String()
		}
		return errors.NewPayloadInvalidError(strings.Join(descs, "; "))
	}

	return nil
}
