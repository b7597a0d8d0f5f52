package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped in tests so no terminal is needed.
var readPassword = term.ReadPassword

// ReadLine prints label and reads one trimmed line, such as the cashier's
// username. A last line without a newline is still returned.
func ReadLine(reader *bufio.Reader, label string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, label+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads the cashier's password from the terminal without echo.
// Callers wipe the returned slice.
func ReadSecret(w io.Writer) ([]byte, error) {
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

// ReadOrderDocument collects an order pasted over one or more lines. Input
// ends as soon as the lines read so far form a complete JSON document, or at
// an empty line. EOF before any input is returned as io.EOF.
func ReadOrderDocument(reader *bufio.Reader, label string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, label+" (empty line to finish)\n"); err != nil {
		return "", err
	}

	var doc strings.Builder
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if err != nil && doc.Len() == 0 {
				return "", io.EOF
			}
			break
		}

		if doc.Len() > 0 {
			doc.WriteByte('\n')
		}
		doc.WriteString(line)

		if err != nil || json.Valid([]byte(doc.String())) {
			break
		}
	}

	return strings.TrimSpace(doc.String()), nil
}
