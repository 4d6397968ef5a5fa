// Package openapi exports a form as an OpenAPI 3 document describing the
// submission endpoint, and imports a request body schema back into field
// definitions. Documents are built and validated with kin-openapi. Field
// metadata that JSON Schema cannot express (ids, kinds, placeholders,
// visibility rules, canvas order) travels in x-formbuilder extensions so an
// exported document imports back losslessly.
package openapi
