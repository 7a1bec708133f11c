package main

import (
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pwexport/internal/models"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check whether a file looks like an export container",
	Long: `Check inspects a file without decrypting it: its name and type, whether
its content has the shape of a container, and whether this host can
decrypt containers at all.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	in, err := readInput(args[0])
	if err != nil {
		return err
	}

	likely := service.IsLikelySourceFile(in.Metadata())
	shaped := models.LooksLikeContainer(in.Data)
	capable := service.CapabilityAvailable()

	if jsonOutput {
		printJSON(map[string]interface{}{
			"file":       displayName(in),
			"size":       len(in.Data),
			"likely":     likely,
			"container":  shaped,
			"capability": capable,
		})
		return nil
	}

	report := func(ok bool, yes, no string) {
		if ok {
			printSuccess("%s", yes)
		} else {
			printWarning("%s", no)
		}
	}
	report(likely, "Name or type matches an export", "Name and type do not match an export")
	report(shaped, "Content has the shape of a container", "Content is not a container")
	if capable {
		printSuccess("Decryption is available")
	} else {
		printError("Decryption is not available on this host")
	}

	return nil
}
