// Command pioxfer moves data to and from an S5933 add-on board with the
// polling transfer engine.
package main

import "github.com/sarchlab/pioxfer/cmd/pioxfer/cmd"

func main() {
	cmd.Execute()
}
