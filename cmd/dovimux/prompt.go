package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// interactive reports whether both ends of the conversation are
// terminals. Without a TTY every prompt resolves to its default, so
// scripted runs never block.
func interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks a yes/no question and returns the answer, falling back
// to def on an empty line or EOF. The reader is shared across prompts
// so buffered readahead is not lost between questions.
func confirm(in *bufio.Reader, out io.Writer, question string, def bool) bool {
	suffix := "[y/N]"
	if def {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s: ", question, suffix)

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

// confirmConversion asks whether to convert the candidate batch.
// Without a TTY the answer is the default no, like every other prompt.
func confirmConversion(in *bufio.Reader, out io.Writer, count int) bool {
	if !interactive() {
		return false
	}
	return confirm(in, out, fmt.Sprintf("Convert %d file(s)?", count), false)
}

// readLine reads one trimmed line, returning fallback on EOF.
func readLine(in *bufio.Reader, out io.Writer, prompt, fallback string) string {
	fmt.Fprintf(out, "%s: ", prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return fallback
	}
	return strings.TrimSpace(line)
}
