package rounds

import (
	"fmt"
	"io"
)

func render(w io.Writer, err error) {
	fmt.Fprintln(w, err.Error())               // want `render errors with consensus\.UserMessage`
	fmt.Fprintf(w, "error: %s\n", err.Error()) // want `render errors with consensus\.UserMessage`
}

func renderOK(w io.Writer, msg string) {
	fmt.Fprintln(w, msg)
}
