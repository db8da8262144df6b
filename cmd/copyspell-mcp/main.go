package main

import (
	"fmt"
	"os"

	"github.com/copyspell/copyspell/pkg/mcp"
)

func main() {
	endpoint := os.Getenv("COPYSPELL_API_URL")

	srv := mcp.NewServer(endpoint)
	if err := srv.Serve(); err != nil {
		fmt.Printf(`{"level":"fatal","msg":"mcp_server_failed","error":"%v"}`+"\n", err)
		os.Exit(1)
	}
}
