package main

import (
	"context"

	"github.com/lapla-cogito/kago/cmd/agent/cmd"
)

func main() {
	ctx := context.Background()
	cmd.Execute(ctx)
}
