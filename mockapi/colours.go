package mockapi

import "fmt"

const (
	green   = "\033[32m"
	blue    = "\033[34m"
	cyan    = "\033[36m"
	yellow  = "\033[33m"
	magenta = "\033[35m"
	gray    = "\033[90m"
	reset   = "\033[0m"
)

var methodColours = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PUT":    cyan,
	"DELETE": yellow,
	"PATCH":  magenta,
}

// colourMethod wraps method, left aligned in width columns, in an ANSI colour
// for DEV console logs.
func colourMethod(method string, width int) string {
	c, ok := methodColours[method]
	if !ok {
		c = gray
	}
	return c + fmt.Sprintf("%-*s", width, method) + reset
}
