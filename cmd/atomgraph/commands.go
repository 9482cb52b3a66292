package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List graphs",
	Long: `List stored graphs, newest first.

Examples:
  atomgraph list
  atomgraph list --strategy words
  atomgraph list --limit 20`,
	RunE: runList,
}

var (
	listLimit    int
	listStrategy string
)

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum results")
	listCmd.Flags().StringVar(&listStrategy, "strategy", "", "Filter by strategy")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	graphs, err := a.svc.List(ctx, store.ListOptions{
		Strategy:   listStrategy,
		Limit:      listLimit,
		Descending: true,
		OrderBy:    "created_at",
	})
	if err != nil {
		return fmt.Errorf("failed to list graphs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(graphs) == 0 {
		fmt.Fprintln(out, "No graphs found")
		return nil
	}

	for _, g := range graphs {
		fmt.Fprintf(out, "  %s  %-24s %-10s k=%-3d payloads=%-5d nodes=%-6d edges=%d\n",
			g.ID, truncate(g.Name, 24), g.Strategy, g.AtomSize, g.PayloadCount, g.NodeCount, g.EdgeCount)
	}

	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a graph",
	Long: `Show a stored graph: its most frequent atoms and heaviest edges.

Examples:
  atomgraph show 3f2a...
  atomgraph show 3f2a... --top 25
  atomgraph show 3f2a... --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	showTop  int
	showJSON bool
)

func init() {
	showCmd.Flags().IntVar(&showTop, "top", 10, "Number of nodes and edges to show")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output the full graph as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.svc.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get graph: %w", err)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return printJSON(out, g)
	}

	fmt.Fprintf(out, "%s (%s)\n", g.Name, g.ID)
	fmt.Fprintf(out, "  Strategy: %s, atom size %d, window %d\n", g.Strategy, g.AtomSize, g.Window)
	fmt.Fprintf(out, "  Payloads: %d, nodes: %d, edges: %d\n", g.PayloadCount, len(g.Nodes), len(g.Edges))
	fmt.Fprintf(out, "  Created:  %s\n\n", g.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	top := max(showTop, 0)
	nodes := append(g.Nodes[:0:0], g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Occurrences > nodes[j].Occurrences })

	content := make(map[uint64]string, len(g.Nodes))
	for _, n := range g.Nodes {
		content[n.Key] = n.Content
	}

	fmt.Fprintln(out, "Top atoms:")
	for _, n := range nodes[:min(top, len(nodes))] {
		fmt.Fprintf(out, "  %6d  %-30s in %d payloads\n", n.Occurrences, quote(n.Content), len(n.Payloads))
	}

	edges := append(g.Edges[:0:0], g.Edges...)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Weight > edges[j].Weight })

	fmt.Fprintln(out, "\nTop edges:")
	for _, e := range edges[:min(top, len(edges))] {
		fmt.Fprintf(out, "  %6d  %s -> %s\n", e.Weight, quote(content[e.From]), quote(content[e.To]))
	}

	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a graph",
	Long: `Delete a graph by its ID.

Examples:
  atomgraph delete 3f2a...`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	if err := a.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", id)
	return nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics",
	Long: `Show statistics about stored graphs.

Examples:
  atomgraph stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initService()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "atomgraph Statistics")
	fmt.Fprintln(out, "────────────────────")
	fmt.Fprintf(out, "Total graphs:  %d\n", stats.TotalGraphs)
	fmt.Fprintf(out, "Total nodes:   %d\n", stats.TotalNodes)
	fmt.Fprintf(out, "Total edges:   %d\n", stats.TotalEdges)
	fmt.Fprintf(out, "Storage size:  %.2f MB\n", float64(stats.StorageBytes)/1024/1024)
	fmt.Fprintln(out)

	if len(stats.GraphsByStrategy) > 0 {
		fmt.Fprintln(out, "By strategy:")
		names := make([]string, 0, len(stats.GraphsByStrategy))
		for name := range stats.GraphsByStrategy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-15s %d\n", name, stats.GraphsByStrategy[name])
		}
	}

	return nil
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List splitting strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range splitter.Strategies() {
			marker := ""
			if name == splitter.DefaultStrategy {
				marker = " (default)"
			}
			fmt.Fprintf(out, "  %-10s %s%s\n", name, strategyHelp[name], marker)
		}
		return nil
	},
}

var strategyHelp = map[string]string{
	splitter.StrategyChunks:    "non-overlapping runs of atom-size characters",
	splitter.StrategyNGrams:    "overlapping character n-grams",
	splitter.StrategyWords:     "word n-grams, optionally stemmed",
	splitter.StrategyLines:     "groups of atom-size lines, 0 keeps the whole text",
	splitter.StrategyRecursive: "chunks of at most atom-size characters split on separators",
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func quote(s string) string {
	return fmt.Sprintf("%q", truncate(s, 28))
}
