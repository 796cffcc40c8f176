package cmd

import (
	"bufio"
	"io"
	"strings"
)

// readAddresses splits r into addresses. Addresses are separated by spaces,
// commas or new lines; everything after a # on a line is ignored.
func readAddresses(r io.Reader) ([]string, error) {
	var addresses []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t' || c == '\r'
		})
		addresses = append(addresses, fields...)
	}

	return addresses, scanner.Err()
}
