// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// Prompter reads operator answers from In and writes prompts to Out. The
// zero defaults wire it to the process terminal; tests inject buffers.
type Prompter struct {
	In  *bufio.Reader
	Out io.Writer

	// AssumeDefaults answers every prompt with its default without reading
	// input, for non-interactive smoke runs.
	AssumeDefaults bool
}

// NewPrompter returns a Prompter bound to stdin/stdout.
func NewPrompter() *Prompter {
	return &Prompter{In: bufio.NewReader(os.Stdin), Out: os.Stdout}
}

// ReadLine prints the prompt and returns one trimmed line of input.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	line, err := p.In.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Input prompts for free text, returning def when the operator just hits enter.
func (p *Prompter) Input(prompt, def string) string {
	if p.AssumeDefaults {
		return def
	}
	suffix := ": "
	if def != "" {
		suffix = fmt.Sprintf(" [%s]: ", def)
	}
	line, err := p.ReadLine(prompt + suffix)
	if err != nil {
		zap.L().Warn("Failed to read input, using default", zap.Error(err))
		return def
	}
	if line == "" {
		return def
	}
	return line
}

// YesNo asks a y/n question with a default answer.
func (p *Prompter) YesNo(prompt string, def bool) bool {
	if p.AssumeDefaults {
		return def
	}
	hint := "Y/n"
	if !def {
		hint = "y/N"
	}
	for {
		line, err := p.ReadLine(fmt.Sprintf("%s [%s]: ", prompt, hint))
		if err != nil {
			zap.L().Warn("Failed to read answer, using default", zap.Error(err))
			return def
		}
		switch strings.ToLower(line) {
		case "":
			return def
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(p.Out, "Please answer y or n.")
	}
}

// Select displays numbered options and returns the chosen value. def is the
// index answered under AssumeDefaults and when no input is left; every call
// site must pick a default that terminates its flow, since a menu answered
// non-interactively can never be re-asked.
func (p *Prompter) Select(prompt string, options []string, def int) string {
	if def < 0 || def >= len(options) {
		def = 0
	}
	if p.AssumeDefaults {
		return options[def]
	}
	fmt.Fprintln(p.Out, prompt)
	for i, option := range options {
		fmt.Fprintf(p.Out, "  %d) %s\n", i+1, option)
	}

	for {
		choice, err := p.ReadLine("Enter choice: ")
		if err != nil {
			zap.L().Warn("Failed to read choice, using default", zap.Error(err))
			return options[def]
		}
		idx, convErr := strconv.Atoi(choice)
		if convErr == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1]
		}
		fmt.Fprintln(p.Out, "Invalid selection. Please try again.")
	}
}

// MultiSelect displays numbered options and returns the chosen subset.
// Input is comma-separated indexes; empty input returns the defaults.
func (p *Prompter) MultiSelect(prompt string, options []string, defaults []int) []string {
	if p.AssumeDefaults {
		var selected []string
		for _, d := range defaults {
			if d >= 0 && d < len(options) {
				selected = append(selected, options[d])
			}
		}
		return selected
	}
	fmt.Fprintln(p.Out, prompt)
	defSet := make(map[int]bool, len(defaults))
	for _, d := range defaults {
		defSet[d] = true
	}
	for i, option := range options {
		mark := " "
		if defSet[i] {
			mark = "*"
		}
		fmt.Fprintf(p.Out, "  %d) [%s] %s\n", i+1, mark, option)
	}

	for {
		line, err := p.ReadLine("Enter choices (comma-separated, empty keeps defaults): ")
		if err != nil || line == "" {
			var selected []string
			for _, d := range defaults {
				if d >= 0 && d < len(options) {
					selected = append(selected, options[d])
				}
			}
			return selected
		}

		var selected []string
		ok := true
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			idx, convErr := strconv.Atoi(part)
			if convErr != nil || idx < 1 || idx > len(options) {
				ok = false
				break
			}
			selected = append(selected, options[idx-1])
		}
		if ok {
			return selected
		}
		fmt.Fprintln(p.Out, "Invalid selection. Please try again.")
	}
}

// Secret asks for hidden input (no terminal echo). Requires a TTY.
func (p *Prompter) Secret(prompt string) (string, error) {
	if p.AssumeDefaults {
		return "", nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("secret prompt failed: no terminal available")
	}

	fmt.Fprint(p.Out, prompt+": ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", err
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		zap.L().Warn("No input received for secret", zap.String("prompt", prompt))
	}
	return secret, nil
}
