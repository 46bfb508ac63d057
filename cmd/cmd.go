// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chishi/forge/envconfig"

	// registriert die .onnx Factory
	_ "github.com/chishi/forge/vision/onnx"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-28s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "forge",
		Short:         "Tiled super-resolution and container corruption",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	upscaleCmd := newUpscaleCmd()
	corruptCmd := newCorruptCmd()
	inspectCmd := newInspectCmd()
	modelsCmd := newModelsCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()

	for _, cmd := range []*cobra.Command{
		serveCmd,
		upscaleCmd,
		corruptCmd,
		modelsCmd,
	} {
		switch cmd {
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["FORGE_DEBUG"],
				envVars["FORGE_HOST"],
				envVars["FORGE_ORIGINS"],
				envVars["FORGE_ALLOWED_HOSTS"],
				envVars["FORGE_MODELS"],
				envVars["FORGE_MODEL"],
				envVars["FORGE_NUM_PARALLEL"],
				envVars["FORGE_TILE_SIZE"],
				envVars["FORGE_NUM_THREADS"],
				envVars["FORGE_GPU"],
				envVars["FORGE_RUNTIME_LIBRARY"],
				envVars["FORGE_MAX_FILE_SIZE"],
				envVars["FORGE_CORRUPT_MIN_PERCENT"],
				envVars["FORGE_CORRUPT_MAX_PERCENT"],
			})
		case upscaleCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["FORGE_HOST"],
				envVars["FORGE_MODELS"],
				envVars["FORGE_MODEL"],
				envVars["FORGE_TILE_SIZE"],
				envVars["FORGE_NUM_THREADS"],
				envVars["FORGE_GPU"],
				envVars["FORGE_RUNTIME_LIBRARY"],
			})
		case corruptCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["FORGE_HOST"],
				envVars["FORGE_MAX_FILE_SIZE"],
				envVars["FORGE_CORRUPT_MIN_PERCENT"],
				envVars["FORGE_CORRUPT_MAX_PERCENT"],
			})
		default:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["FORGE_HOST"], envVars["FORGE_MODELS"]})
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		upscaleCmd,
		corruptCmd,
		inspectCmd,
		modelsCmd,
	)

	return rootCmd
}
