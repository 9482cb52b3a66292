package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

var (
	splitOpts splitFlags
	splitJSON bool
)

var splitCmd = &cobra.Command{
	Use:   "split [text...]",
	Short: "Split text into atoms",
	Long: `Split text into atoms and print one atom per line. With no arguments, or
with "-", the text is read from stdin.

Examples:
  atomgraph split "abcdef"
  atomgraph split --strategy chunks --remainder discard "ABCDEFGH"
  atomgraph split --strategy words --atom-size 2 --stem english "Dogs barking loudly"
  cat notes.txt | atomgraph split --strategy lines --atom-size 0`,
	RunE: runSplit,
}

func init() {
	splitOpts.register(splitCmd)
	splitCmd.Flags().BoolVar(&splitJSON, "json", false, "Output as JSON")
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 0 && isTerminal() {
		return fmt.Errorf("text required as arguments or on stdin")
	}

	content, err := readContent(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.svc.Split(ctx, types.SplitRequest{
		Content:      content,
		SplitOptions: splitOpts.options(cmd),
	})
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if splitJSON {
		return printJSON(out, resp)
	}

	for _, atom := range resp.Atoms {
		fmt.Fprintln(out, atom)
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d atoms (%s, size %d, %dms)\n",
			resp.Count, resp.Strategy, resp.AtomSize, resp.Timing)
	}

	return nil
}

// readContent joins args, or reads stdin when there are none
func readContent(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether stdin is interactive
func isTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
