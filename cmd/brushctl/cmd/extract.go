package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chsh2/import-paint-brush/pkg/brush"
	"github.com/chsh2/import-paint-brush/pkg/util"
)

// NewExtractCmd creates the extract cobra command
func NewExtractCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every brush texture to PNG files",
		Long:  "Decodes a brush file and writes each sample's pixel matrix as a PNG into the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			outDir, _ := cmd.Flags().GetString("out")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			if outDir == "" {
				outDir = "."
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}

			pf, err := brush.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}

			written := 0
			for i, s := range pf.Samples {
				if s.Pixels.Empty() {
					continue
				}
				stem := util.UniqueName(s.Name)
				suffix := ""
				if s.SecondaryTexture {
					suffix = "_grain"
				}
				name := fmt.Sprintf("%s_%03d%s.png", stem, i, suffix)
				f, err := os.Create(filepath.Join(outDir, name))
				if err != nil {
					return fmt.Errorf("creating %s: %w", name, err)
				}
				err = png.Encode(f, s.Pixels.Image())
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return fmt.Errorf("writing %s: %w", name, err)
				}
				written++
			}
			fmt.Printf("Wrote %d texture(s) to %s\n", written, outDir)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "brush file path to extract")
	pf.StringP("out", "d", "", "output directory (default current)")
	return cmd
}
