// Package core provides the shared building blocks for ssoprofile.
// This includes settings, the error taxonomy, the step engine, and file backups.
package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// backupTimeLayout is the timestamp appended to backup file names.
const backupTimeLayout = "20060102-150405"

// BackupFile creates a timestamped copy of the file at srcPath next to it.
// Returns the backup path, or empty string if the source does not exist.
func BackupFile(srcPath string) (string, error) {
	return backupFileAt(srcPath, time.Now())
}

func backupFileAt(srcPath string, now time.Time) (string, error) {
	info, err := os.Stat(srcPath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", srcPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%q is a directory, not a file", srcPath)
	}

	backupPath := fmt.Sprintf("%s.%s.bak", srcPath, now.Format(backupTimeLayout))
	if err := copyFile(srcPath, backupPath); err != nil {
		return "", fmt.Errorf("backup %q: %w", srcPath, err)
	}

	return backupPath, nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) (err error) {
	// #nosec G304 -- paths are from internal configuration
	sourceFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sourceFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	// #nosec G304 -- paths are from internal configuration
	destFile, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, sourceInfo.Mode())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := destFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
