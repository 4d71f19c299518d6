package export

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

const schemaURL = "cibil-accounts.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// AccountSchema returns the JSON schema for an exported account array.
func AccountSchema() []byte {
	props := map[string]any{}
	required := make([]string, 0, len(report.Vocabulary)+2)
	for _, spec := range report.Vocabulary {
		p := map[string]any{"type": "string"}
		switch spec.Shape {
		case report.ShapeAmount:
			p["pattern"] = `^[0-9]+(\.[0-9]+)?$`
		case report.ShapeDate:
			p["pattern"] = `^([0-9]{2}/[0-9]{2}/[0-9]{4})?$`
		}
		if spec.Field == report.MemberName || spec.Field == report.AccountNumber {
			p["minLength"] = 1
		}
		props[spec.Key] = p
		required = append(required, spec.Key)
	}
	props["section"] = map[string]any{
		"type": "string",
		"enum": []string{string(constants.SectionOpen), string(constants.SectionClosed)},
	}
	props["payment_status"] = map[string]any{"type": "string"}
	required = append(required, "section", "payment_status")

	doc := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   "CIBIL accounts",
		"type":    "array",
		"items": map[string]any{
			"type":                 "object",
			"properties":           props,
			"required":             required,
			"additionalProperties": false,
		},
	}
	b, _ := json.MarshalIndent(doc, "", "  ")
	return b
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(AccountSchema())); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks a decoded JSON document against AccountSchema.
func Validate(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	return s.Validate(doc)
}
