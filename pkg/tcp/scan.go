package tcp

import (
	"bufio"
	"bytes"
	"io"
)

const initialLineBuffer = 4096

// newLineScanner returns a scanner producing newline terminated lines of at
// most limit bytes.
func newLineScanner(r io.Reader, limit int) *bufio.Scanner {
	s := bufio.NewScanner(r)
	size := initialLineBuffer
	if limit < size {
		size = limit
	}
	s.Buffer(make([]byte, 0, size), limit)
	s.Split(scanDelimitedLines)
	return s
}

// scanDelimitedLines is a bufio.SplitFunc like bufio.ScanLines, except that
// the '\n' is kept and bytes after the last '\n' at EOF are discarded rather
// than returned as a final line.
func scanDelimitedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	return 0, nil, nil
}
