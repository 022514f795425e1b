package cmd

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pders01/macrotools/internal/models"
	"github.com/pders01/macrotools/internal/store"
	"github.com/spf13/cobra"
)

var archiveOutput string

var archiveCmd = &cobra.Command{
	Use:   "archive [name...]",
	Short: "Bundle macros for backup or transfer",
	Long: `Create a tar.gz archive of macro files. Without names every macro in
the folder is archived.

Examples:
  macro archive                          # Archive all macros
  macro archive rig-setup rig-cleanup    # Archive selected macros
  macro archive --output my-macros.tar.gz`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveOutput, "output", "", "Output file path (default: macros-<date>.tar.gz)")
}

func runArchive(cmd *cobra.Command, args []string) error {
	s := openStore()

	var selected []models.Macro
	if len(args) == 0 {
		macros, err := s.Macros()
		if err != nil {
			return fmt.Errorf("failed to list macros: %w", err)
		}
		selected = macros
	} else {
		for _, name := range args {
			m, err := s.Stat(name)
			if err != nil {
				return err
			}
			selected = append(selected, m)
		}
	}

	if len(selected) == 0 {
		fmt.Println("No macros found")
		return nil
	}

	outputFile := archiveOutput
	if outputFile == "" {
		outputFile = fmt.Sprintf("macros-%s.tar.gz", time.Now().Format("20060102"))
	}

	fmt.Printf("Archiving %d macro(s) to: %s\n", len(selected), outputFile)

	if err := createArchive(outputFile, s, selected); err != nil {
		os.Remove(outputFile)
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if fileInfo, err := os.Stat(outputFile); err == nil {
		fmt.Printf("\n✓ Archive created: %s (%.2f KB)\n", outputFile, float64(fileInfo.Size())/1024)
	} else {
		fmt.Printf("\n✓ Archive created: %s\n", outputFile)
	}

	fmt.Println("\nArchived macros:")
	for _, m := range selected {
		fmt.Printf("  - %s\n", m.Name)
	}

	return nil
}

func createArchive(filename string, s *store.Store, macros []models.Macro) error {
	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	gzWriter := gzip.NewWriter(outFile)
	tarWriter := tar.NewWriter(gzWriter)

	for _, m := range macros {
		if err := addToArchive(tarWriter, s, m); err != nil {
			return fmt.Errorf("failed to archive %s: %w", m.Name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return err
	}
	return outFile.Close()
}

func addToArchive(tw *tar.Writer, s *store.Store, m models.Macro) error {
	f, err := s.Fs().Open(m.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(m.Path)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
