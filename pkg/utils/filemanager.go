// =============================================================================
// shipcheck - File Manager Utility
// =============================================================================
//
// File handling around the pipelines: output directory management, output
// file naming with placeholder expansion, and archival of processed input
// workbooks. Archival moves the input out of the working directory once a
// run completed, so a watched folder never processes the same export twice.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output placement and input archival.
type FileManager struct {
	// OutputDir is the directory where output workbooks are written.
	OutputDir string

	// ArchiveDir is where processed input files are moved.
	// Empty disables archival.
	ArchiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{OutputDir: outputDir, ArchiveDir: archiveDir}
}

// EnsureDirectories creates the output and archive directories if needed.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveDir != "" {
		dirs = append(dirs, fm.ArchiveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputPath expands a file name format inside the output directory.
//
// Placeholders:
//   {uuid}      - a random UUID
//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
//   {date}      - current date (YYYYMMDD)
//
// plus any key from params wrapped in braces, e.g. {stem} for the input
// file name without extension.
func (fm *FileManager) OutputPath(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.NewString(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	name := format
	for placeholder, value := range replacements {
		name = strings.ReplaceAll(name, placeholder, value)
	}
	return filepath.Join(fm.OutputDir, name)
}

// Stem returns a file name without its directory and extension, for the
// {stem} placeholder.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// FINDINGS LOG
// =============================================================================

// WriteFindingsLog writes findings as a timestamped plain-text log in the
// output directory, one line per finding, and returns the log path. The text
// log sits next to the report workbook for quick grepping without opening a
// spreadsheet. No lines, no file.
func (fm *FileManager) WriteFindingsLog(title string, lines []string) (string, error) {
	if len(lines) == 0 {
		return "", nil
	}

	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("findings_%s.log", time.Now().Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create findings log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "%s\nGenerated: %s\nTotal Findings: %d\n\n",
		title, time.Now().Format("2006-01-02 15:04:05"), len(lines))
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush findings log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// INPUT ARCHIVAL
// =============================================================================

// ArchiveInput moves a processed input file into the archive directory and
// returns the archived path. A name collision in the archive gets a
// timestamp suffix rather than overwriting an earlier run's input.
func (fm *FileManager) ArchiveInput(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	if err := os.MkdirAll(fm.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(fm.ArchiveDir, filepath.Base(filePath))
	if _, err := os.Stat(target); err == nil {
		ext := filepath.Ext(target)
		target = strings.TrimSuffix(target, ext) + "_" + time.Now().Format("20060102_150405") + ext
	}

	if err := os.Rename(filePath, target); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, target); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return target, nil
}

// copyFile copies src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
