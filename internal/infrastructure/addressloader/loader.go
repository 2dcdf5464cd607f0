package addressloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// FileLoader loads wallet addresses from a text file, one per line.
// Blank lines and lines starting with # are ignored; malformed addresses are skipped.
type FileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
}

// NewFileLoader creates a new FileLoader.
func NewFileLoader(filePath string, loggerInfo func(msg string, args ...any)) *FileLoader {
	return &FileLoader{
		filePath:   filePath,
		loggerInfo: loggerInfo,
	}
}

// Load reads addresses from the configured file path, in file order.
func (l *FileLoader) Load() ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open address file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var addresses []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "0x") || !common.IsHexAddress(line) {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			}
			continue
		}
		addresses = append(addresses, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning address file %s: %w", l.filePath, err)
	}

	if l.loggerInfo != nil {
		l.loggerInfo("Addresses loaded successfully from file", "count", len(addresses), "path", l.filePath)
	}
	return addresses, nil
}
