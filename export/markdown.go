package export

import (
	"fmt"
	"strings"

	"notevault/model"
)

// Markdown renders a note as a markdown document.
func Markdown(note *model.Note) *Result {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", note.Title)
	fmt.Fprintf(&b, "Created: %s\n", note.CreatedAt.Format("Jan 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "Last Updated: %s\n\n", note.UpdatedAt.Format("Jan 2, 2006 3:04 PM"))

	if len(note.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(note.Tags, ", "))
	}

	fmt.Fprintf(&b, "## Content\n\n%s\n", note.Body)

	return &Result{
		Data:     []byte(b.String()),
		Filename: sanitizeFilename(note.Title) + ".md",
		MimeType: "text/markdown",
	}
}
