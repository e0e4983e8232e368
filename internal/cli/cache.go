package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached layouts, artifacts and icons",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cacheInfoCommand(), c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts, artifacts and icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.Config.Cache.Backend == config.CacheRedis {
				if err := c.clearRedis(cmd); err != nil {
					return err
				}
			}

			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			n, err := clearDir(dir)
			if err != nil {
				return fmt.Errorf("clear %s: %w", dir, err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) clearRedis(cmd *cobra.Command) error {
	backend, err := c.newCache(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer backend.Close()

	cl, ok := backend.(cache.Clearer)
	if !ok {
		// newCache fell back to the null cache; the warning is logged.
		return nil
	}
	if err := cl.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear redis cache: %w", err)
	}
	printSuccess("Cleared redis cache")
	printDetail("Prefix: %s", c.Config.Cache.Prefix)
	return nil
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show how many entries the local cache holds",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			u, err := diskUsage(dir)
			if err != nil {
				return err
			}
			printKeyValue("Backend", c.Config.Cache.Backend)
			printKeyValue("Directory", dir)
			printKeyValue("Entries", fmt.Sprint(u.files))
			printKeyValue("Size", formatBytes(u.bytes))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

type usage struct {
	files int
	bytes int64
}

// diskUsage counts the regular files under dir. A missing dir is empty.
func diskUsage(dir string) (usage, error) {
	var u usage
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		u.files++
		u.bytes += info.Size()
		return nil
	})
	return u, err
}

// clearDir empties dir but keeps it, and returns how many files it held.
func clearDir(dir string) (int, error) {
	u, err := diskUsage(dir)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return u.files, err
		}
	}
	return u.files, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
