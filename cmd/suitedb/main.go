package main

import (
	"os"
	"path/filepath"

	"github.com/hashicorp-forge/suitedb/internal/cmd"
)

func main() {
	os.Args[0] = filepath.Base(os.Args[0])
	os.Exit(cmd.Main(os.Args))
}
