package log

import "strconv"

// QuoteBytes renders bytes as a Go-quoted string, escaping anything that is
// not printable ASCII. Used wherever captured data is shown to a human.
func QuoteBytes(data []byte) string {
	return strconv.QuoteToASCII(string(data))
}
