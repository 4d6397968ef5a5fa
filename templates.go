package formbuilder

import (
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

// EmbeddedTemplates exposes the built-in preview templates so callers can copy
// or extend them and pass the result back through render.WithTemplateFS.
func EmbeddedTemplates() fs.FS {
	return render.EmbeddedTemplates()
}
