package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/HakanVardarr/file-server/internal/client/cli"
)

func main() {

	serverURL := flag.String("s", "http://127.0.0.1:8080", "server base URL")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-s url] register|login\n", os.Args[0])
		os.Exit(2)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}
	app := cli.NewApp(*serverURL, client, os.Stdin, os.Stdout)

	if err := app.Run(ctx, flag.Arg(0)); err != nil {
		log.Fatalf("%v", err)
	}
}
