package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/vision"
)

var screenshotName string

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the active monitor to the screenshot directory",
	Args:  cobra.NoArgs,
	RunE:  takeScreenshot,
}

func init() {
	screenshotCmd.Flags().StringVar(&screenshotName, "name", "", "screenshot file name (timestamped when empty)")
	rootCmd.AddCommand(screenshotCmd)
}

func takeScreenshot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	analyzer := vision.NewAnalyzer(settings, newLogger("vision"))
	path, err := analyzer.SaveScreenshot(screenshotName)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	fmt.Println(path)
	return nil
}
