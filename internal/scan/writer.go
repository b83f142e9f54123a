package scan

import (
	"fmt"
	"io"
)

// LineWriter returns an EmitFunc writing one report line per finding to w.
func LineWriter(w io.Writer) EmitFunc {
	return func(f Finding) error {
		_, err := fmt.Fprintln(w, f.Line())
		return err
	}
}

// Tee returns an EmitFunc calling every fn in order, stopping at the first error.
func Tee(fns ...EmitFunc) EmitFunc {
	return func(f Finding) error {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(f); err != nil {
				return err
			}
		}
		return nil
	}
}
