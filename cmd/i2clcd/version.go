package main

import "fmt"

var (
	buildTime    = "unknown"
	buildVersion = "dev"
)

func showVersion() {
	fmt.Printf("%s (built: %s)\n", buildVersion, buildTime)
}
