package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSimpleText and getPassword can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// ErrCanceled is returned when the user leaves a prompt empty where a value
// is required.
var ErrCanceled = errors.New("canceled")

// GetSimpleText prints a prompt to w and reads a single trimmed line from
// reader. A partial line before EOF is returned as is.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo. The caller
// should wipe the returned slice.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// getRequired is GetSimpleText that treats an empty answer as ErrCanceled.
func getRequired(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	s, err := getSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrCanceled
	}
	return s, nil
}

// getChoice lists options and accepts either a 1-based index or the option
// text, case-insensitively.
func getChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	for i, o := range options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, o)
	}
	s, err := getRequired(reader, prompt, w)
	if err != nil {
		return "", err
	}
	return matchChoice(s, options)
}

func matchChoice(s string, options []string) (string, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > len(options) {
			return "", fmt.Errorf("choose 1-%d", len(options))
		}
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown choice %q", s)
}

// confirm asks a yes/no question; only "y" or "yes" count as yes.
func confirm(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	s, err := getSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}
