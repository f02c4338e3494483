package main

import "github.com/flowfin/go-conciliador/cmd/recon/cmd"

func main() {
	cmd.Execute()
}
