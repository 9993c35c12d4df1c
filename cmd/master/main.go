package main

import (
	"context"

	"github.com/lapla-cogito/kago/cmd/master/cmd"
)

func main() {
	ctx := context.Background()
	cmd.Execute(ctx)
}
