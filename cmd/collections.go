package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Inspect and manage knowledge base collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections in the vector store",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		defer s.Close()

		names := s.store.Collections()
		if len(names) == 0 {
			fmt.Println("No collections. Run `askdocs ingest` first.")
			return nil
		}
		for _, name := range names {
			marker := " "
			if name == s.cfg.Collection {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

var collectionsInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show how the active collection was built",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := s.manifest.Collection(s.cfg.Collection)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Printf("Collection %q has not been ingested yet.\n", s.cfg.Collection)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Collection:    %s\n", info.Name)
		fmt.Printf("Embedder:      %s (%d dimensions)\n", info.Embedder, info.Dimensions)
		fmt.Printf("Chunking:      %d chars, %d overlap\n", info.ChunkSize, info.ChunkOverlap)
		fmt.Printf("Chunks stored: %d\n", s.store.Count())

		files, err := s.manifest.Files(info.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Files:         %d\n", len(files))
		for _, f := range files {
			fmt.Printf("  - %s (%d chunks)\n", f.Source, f.Chunks)
		}

		if run, err := s.manifest.LastRun(info.Name); err == nil {
			fmt.Printf("Last ingested: %s (run %s)\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"), run.ID)
		}
		return nil
	},
}

var collectionsDropCmd = &cobra.Command{
	Use:   "drop [name]",
	Short: "Delete a collection from the vector store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		defer s.Close()

		name := args[0]
		if err := s.store.Drop(name); err != nil {
			return fmt.Errorf("dropping collection %q: %w", name, err)
		}
		if err := s.manifest.ClearFiles(name); err != nil {
			return err
		}
		fmt.Printf("Dropped collection %q.\n", name)
		return nil
	},
}

var collectionsBackupCmd = &cobra.Command{
	Use:   "backup [dest]",
	Short: "Copy the store directory (vectors and manifest) to dest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dest := args[0]
		if _, err := os.Stat(cfg.StoreDir); err != nil {
			return fmt.Errorf("store directory %q: %w", cfg.StoreDir, err)
		}
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("destination %q already exists", dest)
		}

		if err := copyTree(cfg.StoreDir, dest); err != nil {
			return fmt.Errorf("backing up store: %w", err)
		}
		fmt.Printf("Backed up %s to %s.\n", cfg.StoreDir, dest)
		return nil
	},
}

var collectionsRestoreCmd = &cobra.Command{
	Use:   "restore [src]",
	Short: "Replace the store directory with a previous backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		src := args[0]
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("backup %q: %w", src, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("backup %q is not a directory", src)
		}

		if err := os.RemoveAll(cfg.StoreDir); err != nil {
			return fmt.Errorf("clearing store directory: %w", err)
		}
		if err := copyTree(src, cfg.StoreDir); err != nil {
			return fmt.Errorf("restoring store: %w", err)
		}
		fmt.Printf("Restored %s from %s.\n", cfg.StoreDir, src)
		return nil
	},
}

// copyTree copies the directory tree at src to dst, preserving the relative
// layout. dst and any missing parents are created.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsInfoCmd)
	collectionsCmd.AddCommand(collectionsDropCmd)
	collectionsCmd.AddCommand(collectionsBackupCmd)
	collectionsCmd.AddCommand(collectionsRestoreCmd)
	rootCmd.AddCommand(collectionsCmd)
}
