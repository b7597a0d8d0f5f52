package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadLine(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  anna \n"))
	var out bytes.Buffer
	got, err := ReadLine(in, "Username", &out)
	if err != nil || got != "anna" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if out.String() != "Username\n> " {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}

func TestReadLine_LastLineWithoutNewline(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("anna"))
	got, err := ReadLine(in, "Username", io.Discard)
	if err != nil || got != "anna" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestReadLine_EOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	if _, err := ReadLine(in, "Username", io.Discard); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestReadOrderDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		rest  string
	}{
		{name: "single line ends at once", input: "{\"sku\":\"tea\"}\nstats\n", want: `{"sku":"tea"}`, rest: "stats\n"},
		{name: "multi line ends when complete", input: "{\"table\": 7,\n \"items\": []}\nstats\n", want: "{\"table\": 7,\n \"items\": []}", rest: "stats\n"},
		{name: "empty line ends incomplete input", input: "{\"table\":\n\nstats\n", want: `{"table":`, rest: "stats\n"},
		{name: "eof after input", input: "{\"a\":", want: `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bufio.NewReader(strings.NewReader(tt.input))
			got, err := ReadOrderDocument(in, "Order JSON", io.Discard)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			rest, _ := io.ReadAll(in)
			if string(rest) != tt.rest {
				t.Fatalf("left %q unread, want %q", rest, tt.rest)
			}
		})
	}
}

func TestReadOrderDocument_EOFBeforeInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	if _, err := ReadOrderDocument(in, "Order JSON", io.Discard); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestReadSecret_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("not a terminal")
	}
	if _, err := ReadSecret(io.Discard); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadSecret_ReadsWithoutEcho(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	pw, err := ReadSecret(&out)
	if err != nil || string(pw) != "s3cret" {
		t.Fatalf("got %q, err=%v", pw, err)
	}
	if out.String() != "Password: \n" {
		t.Fatalf("unexpected prompt %q", out.String())
	}
}
