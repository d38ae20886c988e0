// pezzo is a privilege-elevation utility of the sudo/doas family: a setuid
// executable that runs a command as another user after matching the request
// against /etc/pezzo.conf and authenticating the invoker on the controlling
// terminal.
package main

import (
	"fmt"
	"os"

	"pezzo-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pezzo: %v\n", err)
		os.Exit(1)
	}
}
