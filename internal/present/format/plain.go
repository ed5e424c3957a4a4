package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mithrel/folio/pkg/api"
)

// TSV columns: id, name, category, pages, elements, version, updated_unix_ms, tags
var headerLine = "id\tname\tcategory\tpages\telements\tversion\tupdated_unix_ms\ttags\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func plainRow(t api.Template) string {
	ms := int64(0)
	if !t.UpdatedAt.IsZero() {
		ms = t.UpdatedAt.UnixMilli()
	}
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
		esc(t.ID), esc(t.Name), esc(t.Category), len(t.Pages), t.ElementCount(), t.Version, ms, esc(joinTags(t.Tags)))
}

func WritePlainTemplates(w io.Writer, templates []api.Template, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, t := range templates {
		_, _ = io.WriteString(tw, plainRow(t))
	}
	return tw.Flush()
}

func WritePlainTemplate(w io.Writer, t api.Template, headers bool) error {
	return WritePlainTemplates(w, []api.Template{t}, headers)
}

// WritePlainValidation prints one finding per line, errors first.
func WritePlainValidation(w io.Writer, res api.ValidationResult) error {
	status := "valid"
	if !res.IsValid {
		status = "invalid"
	}
	if _, err := fmt.Fprintf(w, "%s\t%d errors\t%d warnings\n", status, len(res.Errors), len(res.Warnings)); err != nil {
		return err
	}
	for _, e := range res.Errors {
		if _, err := fmt.Fprintf(w, "error\t%s\n", esc(e)); err != nil {
			return err
		}
	}
	for _, wn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "warning\t%s\n", esc(wn)); err != nil {
			return err
		}
	}
	return nil
}

func WritePlainExport(w io.Writer, r api.ExportResult) error {
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Format, esc(r.Filename), r.URL)
	return err
}
