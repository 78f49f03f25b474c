/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
