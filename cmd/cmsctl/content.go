package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/institute-cms/internal/content"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	dryRun     bool
)

func init() {
	for _, cmd := range []*cobra.Command{normalizeCmd, syncCategoriesCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result here instead of stdout")
	}
	syncCategoriesCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rename plan without writing content")
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [content.json]",
	Short: "Fill in defaults and derived fields of a content export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := readTree(args[0])
		if err != nil {
			return err
		}
		return writeTree(cmd.OutOrStdout(), tree.Normalize())
	},
}

var syncCategoriesCmd = &cobra.Command{
	Use:   "sync-categories [content.json]",
	Short: "Rename every category key to its slug and rewrite course references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := readTree(args[0])
		if err != nil {
			return err
		}
		next, renames, err := tree.Normalize().SyncAllCategories()
		if err != nil {
			return err
		}

		out := cmd.ErrOrStderr()
		if dryRun {
			out = cmd.OutOrStdout()
		}
		printRenames(out, renames)
		if dryRun {
			return nil
		}
		return writeTree(cmd.OutOrStdout(), next)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [content.json]",
	Short: "Report slug drift and learning path steps that reference missing courses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := readTree(args[0])
		if err != nil {
			return err
		}
		problems := checkTree(tree.Normalize())
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) found", len(problems))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "content is consistent")
		return nil
	},
}

func readTree(path string) (content.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content.FromJSON(data)
}

// writeTree writes indented JSON to --output when set, otherwise to w.
func writeTree(w io.Writer, tree content.Tree) error {
	data, err := tree.JSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	if outputPath != "" {
		return os.WriteFile(outputPath, buf.Bytes(), 0644)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func printRenames(w io.Writer, renames map[string]string) {
	if len(renames) == 0 {
		fmt.Fprintln(w, "all category keys already match their slugs")
		return
	}
	keys := make([]string, 0, len(renames))
	for k := range renames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s -> %s\n", k, renames[k])
	}
}

func checkTree(tree content.Tree) []string {
	var problems []string
	for _, d := range tree.SlugDrift() {
		problems = append(problems, fmt.Sprintf("%s %q has slug %q", d.Kind, d.Key, d.Slug))
	}
	for _, ref := range tree.DanglingReferences() {
		problems = append(problems, fmt.Sprintf("learning path step %s references a missing course", ref))
	}
	return problems
}
