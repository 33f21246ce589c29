package awsconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// readConfigFile returns the file content, or "" when it does not exist.
func readConfigFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("config path is empty")
	}

	// #nosec G304 -- config path is user-configurable
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read config file: %w", err)
	}

	return string(data), nil
}

// StripBlocks removes every complete generated block from content, along
// with the blank line written before its start marker. A start marker with
// no matching end marker is left in place. It returns the remaining content
// and the number of blocks removed.
func StripBlocks(content string) (string, int) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	kept := make([]string, 0, len(lines))
	removed := 0
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != BeginMarker {
			kept = append(kept, lines[i])
			continue
		}

		end := findEndMarker(lines, i+1)
		if end < 0 {
			kept = append(kept, lines[i:]...)
			break
		}

		if n := len(kept); n > 0 && strings.TrimSpace(kept[n-1]) == "" {
			kept = kept[:n-1]
		}
		removed++
		i = end
	}

	return strings.Join(kept, "\n"), removed
}

func findEndMarker(lines []string, from int) int {
	for j := from; j < len(lines); j++ {
		switch strings.TrimSpace(lines[j]) {
		case EndMarker:
			return j
		case BeginMarker:
			return -1
		}
	}
	return -1
}
