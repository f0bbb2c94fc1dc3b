// doodledash runs text dashboards built from YAML configuration.
//
// Usage:
//
//	doodledash start dashboard.yaml [more.yaml...]
//	doodledash validate dashboard.yaml
//	doodledash components
//	doodledash secrets list
//	doodledash secrets put router username=admin password=hunter2
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
