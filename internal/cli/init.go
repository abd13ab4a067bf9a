// internal/cli/init.go

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	initDirectory string
	initForce     bool
)

const defaultManifestName = "stride.toml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter stride.toml in the current directory",
	Long: `Creates a standalone stride.toml with a [tasks] table containing a few
example tasks. Edit it by hand afterward; init only saves the first
boilerplate write.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := initDirectory
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create target dir: %w", err)
		}
		path := filepath.Join(dir, defaultManifestName)

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}

		if err := os.WriteFile(path, []byte(starterManifest(filepath.Base(absOrDir(dir)))), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initDirectory, "dir", "C", "", "target directory (default current)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing stride.toml")
	rootCmd.AddCommand(initCmd)
}

func absOrDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func starterManifest(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s's task manifest\n\n", name)
	b.WriteString("[tasks]\n")
	b.WriteString("build = \"go build ./...\"\n")
	b.WriteString("test = \"go test ./...\"\n")
	b.WriteString("vet = \"go vet ./...\"\n")
	b.WriteString("\n")
	b.WriteString("[tasks.ci]\n")
	b.WriteString("composite = [\"vet\", \"test\"]\n")
	b.WriteString("help = \"run the full check suite\"\n")
	return b.String()
}
