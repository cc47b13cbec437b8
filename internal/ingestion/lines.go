package ingestion

import (
	"bufio"
	"io"

	defaults "github.com/xtxerr/sensorring/config"
	"github.com/xtxerr/sensorring/internal/errors"
)

// Line is one line of input without its line ending.
// Truncated lines were longer than defaults.MaxLineBytes; Text holds the
// first defaults.MaxLineBytes bytes.
type Line struct {
	Text      string
	Truncated bool
}

// ScanLines calls fn for each line of r. Unlike bufio.Scanner it does not
// stop at an oversized line: the line is reported truncated and reading
// goes on. A non-nil error from fn stops the scan and is returned as is.
func ScanLines(r io.Reader, fn func(Line) error) error {
	br := bufio.NewReader(r)
	buf := make([]byte, 0, 256)
	truncated := false

	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if !truncated {
			if room := defaults.MaxLineBytes - len(buf); len(frag) > room {
				buf = append(buf, frag[:room]...)
				truncated = true
			} else {
				buf = append(buf, frag...)
			}
		}
		if more {
			continue
		}

		line := Line{Text: string(buf), Truncated: truncated}
		buf, truncated = buf[:0], false
		if err := fn(line); err != nil {
			return err
		}
	}
}
