package main

import (
	"github.com/germplasm-hub/data-api/cmd"
)

func main() {
	cmd.Execute()
}
