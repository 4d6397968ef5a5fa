// Package model defines the design-time description of a form: an ordered
// collection of FieldDefinition values, the tagged visibility rule attached to
// each field and the ValueMap entered while previewing. The types carry no
// behaviour beyond cloning and small invariant helpers; the store package owns
// mutation and the visibility package owns evaluation.
//
// Struct fields are annotated for both JSON and YAML so the interchange codec
// can serialise them directly. The JSON shape is the export format: an array of
// field objects in canvas order.
package model
