// Command gpurun runs the embedded compute shader once on the best
// available GPU adapter and prints the contents of the output buffer.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/gpurun/internal/dispatch"
)

func main() {
	d := dispatch.NewDriver(os.Stdout, os.Stderr)
	if err := d.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
