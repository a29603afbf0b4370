package main

import (
	"github.com/cloudfetch/s3fetch/cmd"
)

func main() {
	cmd.Execute()
}
