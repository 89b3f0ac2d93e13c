package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/katanabench/katana/internal/vision"
)

var makeTemplateCmd = &cobra.Command{
	Use:   "make-template <name> <x1> <y1> <x2> <y2>",
	Short: "Capture a screen region as a matching template",
	Long:  "Crops the given normalized region (coordinates in [0,1]) from the active monitor and saves it to the template directory under the given name.",
	Args:  cobra.ExactArgs(5),
	RunE:  makeTemplate,
}

func init() {
	rootCmd.AddCommand(makeTemplateCmd)
}

func makeTemplate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	coords := make([]float64, 4)
	for i, arg := range args[1:] {
		coords[i], err = strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("coordinate %q is not a number", arg)
		}
	}

	region := vision.NewRegion(coords[0], coords[1], coords[2], coords[3])
	if err := region.Validate(); err != nil {
		return err
	}

	analyzer := vision.NewAnalyzer(settings, newLogger("vision"))
	path, err := analyzer.CreateTemplate(region, args[0])
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	fmt.Println(path)
	return nil
}
