// Package codec converts a field collection to and from the interchange
// document: a pretty-printed JSON array of field objects in canvas order, with
// a YAML rendition of the same schema. Decoding validates the document and
// understands the legacy displayConditionConfig/customCode members written by
// earlier exports.
//
// EncodeValues produces the submitted answers of a preview session keyed by
// field name.
package codec
