package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// featureSchema mirrors the Features contract: the fixed field set with
// unknown fields rejected and adherence bounded. Schema validation is the
// layer whose invariants the scoring core trusts.
const featureSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["as_of_date"],
  "properties": {
    "user_id": {"type": "string"},
    "as_of_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "bp_sys_trend_14d": {"type": "number"},
    "bp_sys_var_7d": {"type": "number"},
    "bp_dia_trend_14d": {"type": "number"},
    "bp_dia_var_7d": {"type": "number"},
    "hrv_z_7d": {"type": "number"},
    "rhr_z_7d": {"type": "number"},
    "steps_z_7d": {"type": "number"},
    "sleep_debt_hours_7d": {"type": "number"},
    "weight_trend_14d": {"type": "number"},
    "glucose_trend_14d": {"type": "number"},
    "a1c_latest": {"type": "number"},
    "ldl_latest": {"type": "number"},
    "adherence_nudge_7d": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

var (
	scoreSchema = mustCompile(featureSchema)

	batchSchema = mustCompile(fmt.Sprintf(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["items"],
  "properties": {
    "items": {"type": "array", "minItems": 1, "maxItems": 500, "items": %s}
  }
}`, featureSchema))

	trainSchema = mustCompile(fmt.Sprintf(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["rows"],
  "properties": {
    "rows": {
      "type": "array",
      "minItems": 5,
      "maxItems": 50000,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["features", "label"],
        "properties": {
          "features": %s,
          "label": {"type": "number"}
        }
      }
    }
  }
}`, featureSchema))
)

func mustCompile(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return compiled
}

// validateBody checks raw JSON against a compiled schema and flattens the
// first few violations into one caller-facing message.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msg := ""
	for i, violation := range result.Errors() {
		if i == 3 {
			msg += "; ..."
			break
		}
		if i > 0 {
			msg += "; "
		}
		msg += violation.String()
	}
	return fmt.Errorf("%s", msg)
}
