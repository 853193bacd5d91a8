// Package detect sniffs an input path to decide how to load it.
package detect

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
)

// Format represents a recognized input format.
type Format int

const (
	Unknown       Format = iota
	Zip                  // zip archive of JUnit reports
	FailureCSV           // flat failure report written by analyze
	ComparisonCSV        // comparison report written by compare
	Directory            // directory that may hold a failure report
)

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case FailureCSV:
		return "failure-csv"
	case ComparisonCSV:
		return "comparison-csv"
	case Directory:
		return "directory"
	default:
		return "unknown"
	}
}

// sniffLen is how much of a file Path reads.
const sniffLen = 512

var (
	zipLocalHeader = []byte("PK\x03\x04")
	zipEmptyEnd    = []byte("PK\x05\x06")
	utf8BOM        = []byte("\xef\xbb\xbf")
)

// Path stats and, for regular files, sniffs the file at path.
func Path(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Unknown, err
	}
	if info.IsDir() {
		return Directory, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Unknown, err
	}
	return Sniff(buf[:n]), nil
}

// Sniff examines the first bytes of a file to determine its format.
func Sniff(data []byte) Format {
	if bytes.HasPrefix(data, zipLocalHeader) || bytes.HasPrefix(data, zipEmptyEnd) {
		return Zip
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	line := data
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		line = data[:i]
	}
	if len(line) == 0 {
		return Unknown
	}

	header, err := csv.NewReader(bytes.NewReader(line)).Read()
	if err != nil {
		return Unknown
	}
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[h] = true
	}
	switch {
	case !cols["Test Name"] || !cols["Class Name"]:
		return Unknown
	case header[0] == "Category":
		return ComparisonCSV
	default:
		return FailureCSV
	}
}
