package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// promptLine prints a label and reads one trimmed line from stdin.
func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptLineDefault is promptLine with a fallback used when the user just
// presses enter.
func promptLineDefault(label, fallback string) (string, error) {
	value, err := promptLine(fmt.Sprintf("%s [%s]: ", label, fallback))
	if err != nil {
		return "", err
	}
	if value == "" {
		return fallback, nil
	}
	return value, nil
}
