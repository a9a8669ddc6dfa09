// Package cli runs a line oriented shell, interactive with completion
// when stdin is a terminal, otherwise it executes stdin line by line.
package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

type ExecFunc func(line string)

func MainLoop(tag string, exec ExecFunc, complete prompt.Completer) error {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt.New(prompt.Executor(exec), complete,
			prompt.OptionTitle(tag),
			prompt.OptionPrefix(tag+"> "),
		).Run()
		return nil
	}
	return ExecReader(os.Stdin, exec)
}

// ExecReader feeds exec every non-empty line, whitespace trimmed.
func ExecReader(r io.Reader, exec ExecFunc) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		exec(line)
	}
	return scanner.Err()
}

func FilterCompleter(suggests []prompt.Suggest) prompt.Completer {
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}
