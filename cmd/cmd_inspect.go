// cmd_inspect.go - Inspect Command
// Hauptfunktionen: InspectHandler - Top-Level Boxen und Payload-Regionen
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chishi/forge/corrupt"
	"github.com/chishi/forge/format"
)

// InspectHandler - Listet die Box-Struktur einer Datei
func InspectHandler(cmd *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	return writeBoxes(cmd.OutOrStdout(), buf)
}

func writeBoxes(w io.Writer, buf []byte) error {
	boxes := corrupt.ScanBoxes(buf)
	if len(boxes) == 0 {
		return fmt.Errorf("no boxes found in %s", format.HumanBytes(int64(len(buf))))
	}

	var data [][]string
	for _, b := range boxes {
		size := format.HumanBytes(int64(b.Size))
		if b.ToEOF {
			size += " (to EOF)"
		}

		payload := "-"
		if b.Type == string(corrupt.PayloadTag[:]) {
			r := b.Payload()
			payload = fmt.Sprintf("[%d, %d)", r.Start, r.End)
		}

		data = append(data, []string{strconv.Itoa(b.Offset), size, b.Type, payload})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"OFFSET", "SIZE", "TYPE", "PAYLOAD"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	regions := corrupt.ScanRegions(buf, corrupt.PayloadTag)
	total := 0
	for _, r := range regions {
		total += r.Len()
	}

	last := boxes[len(boxes)-1]
	if end := last.Offset + last.Size; end < len(buf) {
		fmt.Fprintf(w, "\nscan stopped at offset %d (%d trailing bytes)\n", end, len(buf)-end)
	}
	fmt.Fprintf(w, "\n%d payload region(s), %s\n", len(regions), format.HumanBytes(int64(total)))
	return nil
}

// newInspectCmd - Erstellt den inspect Command
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the top-level box layout of an MP4 file",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectHandler,
	}
}
