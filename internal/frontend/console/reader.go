package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrTooManyAttempts is returned when the player keeps entering invalid input.
var ErrTooManyAttempts = errors.New("too many invalid inputs")

// Reader reads bounded integers line by line. It implements command.Provider.
type Reader struct {
	scanner     *bufio.Scanner
	out         io.Writer
	maxAttempts int
}

// NewReader creates a Reader over in that writes prompts and complaints to out.
// maxAttempts <= 0 means unlimited retries.
func NewReader(in io.Reader, out io.Writer, maxAttempts int) *Reader {
	return &Reader{scanner: bufio.NewScanner(in), out: out, maxAttempts: maxAttempts}
}

// ReadInt blocks until a line holding an integer in [min, max] is read.
//
// Postcondition: returns io.EOF when input ends, ErrTooManyAttempts after
// maxAttempts invalid lines.
func (r *Reader) ReadInt(min, max int) (int, error) {
	for attempt := 1; ; attempt++ {
		fmt.Fprintf(r.out, "%s ", Colorf(BrightCyan, "[%d-%d]>", min, max))
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(r.scanner.Text()))
		if err == nil && n >= min && n <= max {
			return n, nil
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return 0, ErrTooManyAttempts
		}
		fmt.Fprintln(r.out, Colorf(Yellow, "Enter a number from %d to %d.", min, max))
	}
}
