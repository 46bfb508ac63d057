// cmd_list.go - Models Command
// Hauptfunktionen: ModelsHandler
package cmd

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chishi/forge/api"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/vision"
)

// ModelsHandler - Listet die bekannten Upscaling-Modelle auf
func ModelsHandler(cmd *cobra.Command, args []string) error {
	var models []api.ModelResponse

	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}

		resp, err := client.List(cmd.Context())
		if err != nil {
			return err
		}
		models = resp.Models
	} else {
		models = localModels(vision.DefaultRegistry, envconfig.Models())
	}

	writeModels(cmd.OutOrStdout(), models)
	return nil
}

// localModels prueft fuer jedes registrierte Modell ob die Datei existiert
func localModels(r *vision.Registry, dir string) []api.ModelResponse {
	var models []api.ModelResponse
	for _, spec := range r.List() {
		_, _, err := r.Resolve(spec.Name, dir)
		models = append(models, api.ModelResponse{
			Name:        spec.Name,
			File:        spec.File,
			Description: spec.Description,
			Scale:       spec.Scale,
			Available:   err == nil,
		})
	}
	return models
}

func writeModels(w io.Writer, models []api.ModelResponse) {
	var data [][]string
	for _, m := range models {
		status := "missing"
		switch {
		case m.Loaded:
			status = "loaded"
		case m.Available:
			status = "available"
		}
		data = append(data, []string{m.Name, strconv.Itoa(m.Scale) + "x", status, m.Description})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "SCALE", "STATUS", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

// newModelsCmd - Erstellt den models Command
func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"list", "ls"},
		Short:   "List upscaling models",
		Args:    cobra.ExactArgs(0),
		PreRunE: checkServerHeartbeat,
		RunE:    ModelsHandler,
	}

	cmd.Flags().Bool("remote", false, "Ask the forge server at $FORGE_HOST")
	return cmd
}
