package detection

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadLabels reads a newline-delimited class-name list. Each line is trimmed;
// the line number (0-based) is the class id.
func ReadLabels(r io.Reader) ([]string, error) {
	var labels []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read class names")
	}
	return labels, nil
}

// LoadLabels reads the class-name list at path.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open class names")
	}
	defer f.Close()
	return ReadLabels(f)
}
