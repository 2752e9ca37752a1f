// Package prompt holds the few interactive questions the guard asks the operator.
package prompt

import (
	"bufio"
	"fmt"
	"io"

	"deviceguard/internal/config"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
)

// Asker asks a yes/no question.
type Asker func(title string) (bool, error)

// Confirm asks title in the terminal with a yes/no selector.
func Confirm(title string) (bool, error) {
	var answer bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&answer).
		Run()
	if err != nil {
		return false, errors.Wrap(err, "prompt aborted")
	}
	return answer, nil
}

// ChooseVariant returns the configured model variant, asking the operator
// when none is configured.
func ChooseVariant(configured config.Variant, ask Asker) (config.Variant, error) {
	if configured != "" {
		return config.ParseVariant(string(configured))
	}

	useTiny, err := ask("Use YOLOv3-tiny for faster processing?")
	if err != nil {
		return "", err
	}
	if useTiny {
		return config.VariantTiny, nil
	}
	return config.VariantFull, nil
}

// WaitForEnter prints a message and blocks until a line (or EOF) is read.
func WaitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "\nPress Enter to exit...")
	bufio.NewReader(in).ReadString('\n')
}
