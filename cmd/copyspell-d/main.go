package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/copyspell/copyspell/pkg/api"
	"github.com/copyspell/copyspell/pkg/generator"
	"github.com/copyspell/copyspell/pkg/provider"
	"github.com/copyspell/copyspell/pkg/provider/deepseek"
	"github.com/copyspell/copyspell/pkg/provider/groq"
	"github.com/copyspell/copyspell/pkg/provider/openrouter"
	"github.com/copyspell/copyspell/pkg/router"
	"github.com/copyspell/copyspell/pkg/store"
	"github.com/copyspell/copyspell/web"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"copyspell-d"}`)

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf(`{"level":"fatal","msg":"invalid_config","error":"%v"}`+"\n", err)
		os.Exit(1)
	}

	// Provider keys come from the environment; a .env file is a
	// convenience, not a requirement.
	if err := godotenv.Load(cfg.EnvFile); err == nil {
		fmt.Printf(`{"level":"info","msg":"env_file_loaded","path":"%s"}`+"\n", cfg.EnvFile)
	}

	providers := []provider.Provider{
		groq.New(os.Getenv("GROQ_API_KEY"), os.Getenv("GROQ_BASE_URL")),
		deepseek.New(os.Getenv("DEEPSEEK_API_KEY"), os.Getenv("DEEPSEEK_BASE_URL")),
		openrouter.New(os.Getenv("OPENROUTER_API_KEY"), os.Getenv("OPENROUTER_BASE_URL")),
	}
	configured := 0
	for _, p := range providers {
		if p.Configured() {
			configured++
		}
	}
	fmt.Printf(`{"level":"info","msg":"providers_loaded","configured":%d,"total":%d}`+"\n", configured, len(providers))
	if configured == 0 {
		fmt.Println(`{"level":"warn","msg":"no_providers_configured","hint":"set GROQ_API_KEY, DEEPSEEK_API_KEY or OPENROUTER_API_KEY"}`)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Printf(`{"level":"fatal","msg":"failed_to_init_store","error":"%v"}`+"\n", err)
		os.Exit(1)
	}
	fmt.Printf(`{"level":"info","msg":"store_initialized","path":"%s"}`+"\n", cfg.DBPath)

	rt := router.New([]string{"groq", "deepseek", "openrouter"}, providers...)
	gen := generator.New(rt, st)

	srv := api.NewServer(gen, cfg.Addr)
	switch cfg.WebAssetsMode {
	case "embedded":
		assets, err := web.Assets()
		if err != nil {
			fmt.Printf(`{"level":"error","msg":"web_assets_unavailable","error":"%v"}`+"\n", err)
		} else {
			srv.SetStaticFS(assets)
		}
	case "fs":
		srv.SetStaticFS(os.DirFS(cfg.WebDir))
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf(`{"level":"info","msg":"http_listening","addr":"%s"}`+"\n", cfg.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)
	case err := <-errCh:
		fmt.Printf(`{"level":"fatal","msg":"http_server_failed","error":"%v"}`+"\n", err)
		st.Close()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stop_server","error":"%v"}`+"\n", err)
	}

	if err := st.Close(); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_close_store","error":"%v"}`+"\n", err)
	} else {
		fmt.Println(`{"level":"info","msg":"store_closed"}`)
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
}
