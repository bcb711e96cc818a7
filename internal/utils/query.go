package utils

import "strconv"

// AtoiDefault parses s as an int and falls back to def when the value is
// empty or malformed. Handlers use it for optional numeric query
// parameters such as the message page limit, where a bad value should
// degrade to the server default rather than fail the request.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
