package main

import "github.com/alessandroavenali/fuel-logistics-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
