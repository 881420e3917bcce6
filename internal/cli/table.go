package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/studiowebux/curlgen/internal/generate"
	"github.com/studiowebux/curlgen/internal/types"
)

// renderRequestTable writes one row per request
func renderRequestTable(w io.Writer, requests []types.RequestDefinition) error {
	if len(requests) == 0 {
		_, err := fmt.Fprintln(w, "No requests found")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Name", "Method", "URL", "Payload"})

	for i := range requests {
		req := &requests[i]
		row := []string{
			strconv.Itoa(i + 1),
			req.Title(),
			req.Method,
			req.URL,
			string(generate.PayloadKind(req)),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}

	return table.Render()
}
