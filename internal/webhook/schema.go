package webhook

import (
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

// PayloadSchema describes the outbound body so receivers can validate it.
func PayloadSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		schema = reflector.Reflect(&Payload{})
		schema.Title = "Approval webhook payload"
	})
	return schema
}
