// Command vmsim simulates the address translation of a demand-paged virtual
// memory.
package main

import "github.com/sarchlab/vmsim/vmsim/cmd"

func main() {
	cmd.Execute()
}
