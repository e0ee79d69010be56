package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akashicode/pdf2text/internal/display"
	"github.com/akashicode/pdf2text/internal/reader"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.pdf>...",
	Short: "Show page count, version and encryption of PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		f, err := reader.LoadFile(path)
		if err != nil {
			display.ErrorMsg(w, err.Error())
			failed++
			continue
		}
		info, err := reader.Inspect(f.Data)
		if err != nil {
			display.ErrorMsg(w, fmt.Sprintf("%s: %v", f.Name, err))
			failed++
			continue
		}

		display.Header(w, f.Name)
		display.KeyValue(w, "Pages", info.Pages, "")
		display.KeyValue(w, "Version", info.Version, "")
		display.KeyValue(w, "Encrypted", info.Encrypted, "")
		display.KeyValue(w, "Size", display.HumanSize(int64(info.Size)), "")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be inspected", failed, len(args))
	}
	return nil
}
