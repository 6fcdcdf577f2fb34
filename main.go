package main

import (
	"github.com/strideapp/stride/cmd"
	"github.com/strideapp/stride/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
