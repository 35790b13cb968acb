package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed slot.schema.json
var slotSchemaJSON string

var (
	slotSchemaOnce sync.Once
	slotSchema     *jsonschema.Schema
	slotSchemaErr  error
)

func compiledSlotSchema() (*jsonschema.Schema, error) {
	slotSchemaOnce.Do(func() {
		slotSchema, slotSchemaErr = jsonschema.CompileString("slot.schema.json", slotSchemaJSON)
	})
	return slotSchema, slotSchemaErr
}

// validateBlob checks the outer shape of a slot blob before it is decoded
// into records.
func validateBlob(blob []byte) error {
	sch, err := compiledSlotSchema()
	if err != nil {
		return fmt.Errorf("failed to compile slot schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return nil
}
