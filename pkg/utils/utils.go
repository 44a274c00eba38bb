package utils

import (
	"github.com/invopop/jsonschema"
)

// Transform splits a slice into batches of specified size
func Transform[T any](data []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = len(data)
	}
	var transformed [][]T
	for i := 0; i < len(data); i += batchSize {
		end := min(i+batchSize, len(data))
		transformed = append(transformed, data[i:end])
	}
	return transformed
}

// GenerateSchema generates a strict JSON schema for T with every definition inlined
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
