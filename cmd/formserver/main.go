package main

import (
	"context"

	"github.com/fnproject/formserver/api/server"
)

func main() {
	ctx := context.Background()
	formServer := server.NewFromEnv(ctx)
	formServer.Start(ctx)
}
