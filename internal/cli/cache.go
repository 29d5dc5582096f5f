package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mydehq/metamatch"
	"github.com/mydehq/metamatch/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the external data cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cached records",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := metamatch.CacheList(baseOptions()...)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			logger.Info("Cache is empty")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			version := strconv.Itoa(e.Version)
			if !e.Current {
				version += " (stale)"
			}
			rows = append(rows, []string{e.Key, e.Title, strconv.Itoa(e.Year), string(e.Kind), version})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Key", "Query title", "Year", "Kind", "Version"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		))
		logger.Info(fmt.Sprintf("%s count: %s", ui.StyleHeader.Render("Cached records"), ui.StylePattern.Render(fmt.Sprint(len(entries)))))
		return nil
	},
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info <key>",
	Short: "Show a cached record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := metamatch.CacheInfo(args[0], baseOptions()...)
		if err != nil {
			return err
		}
		out, err := recordYAML(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.HighlightYAML(out))
		return nil
	},
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search cache keys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := metamatch.CacheSearch(args[0], baseOptions()...)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			logger.Info("No cached record matches", "query", args[0])
			return nil
		}
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StyleDim.Render("-"), ui.StylePath.Render(k))
		}
		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the cache file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := metamatch.CachePath(baseOptions()...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheInfoCmd, cacheSearchCmd, cachePathCmd)
}

// recordYAML renders a cached record with its persisted field names
func recordYAML(rec *metamatch.CacheRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	out, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}
	return string(out), nil
}
