package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/copyspell/copyspell/pkg/client"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	flagSet := flag.NewFlagSet("copyspell", flag.ExitOnError)
	apiURL := flagSet.String("api", os.Getenv("COPYSPELL_API_URL"), "daemon base URL")
	contentType := flagSet.String("type", "", "content type id (facebook_post, email, ...)")
	framework := flagSet.String("framework", "", "copywriting framework (AIDA, PAS, ...)")
	audience := flagSet.String("audience", "", "audience id")
	tone := flagSet.String("tone", "", "tone id")
	providerName := flagSet.String("provider", "", "preferred provider")
	wordCount := flagSet.String("words", "", "word count: short|normal|long")
	stream := flagSet.Bool("stream", false, "stream output as it is generated")
	showVersion := flagSet.Bool("version", false, "print version and exit")
	flagSet.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("copyspell %s (%s, built %s)\n", Version, Commit, BuildTime)
		return
	}

	keywords := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if keywords == "" {
		fmt.Println("Usage: copyspell [flags] <keywords...>")
		flagSet.PrintDefaults()
		os.Exit(1)
	}

	api := client.NewClient(*apiURL)
	req := client.GenerateRequest{
		Keywords:    keywords,
		ContentType: *contentType,
		Framework:   *framework,
		Audience:    *audience,
		Tone:        *tone,
		Provider:    *providerName,
		WordCount:   *wordCount,
	}

	ctx := context.Background()

	if *stream {
		for chunk := range api.GenerateStream(ctx, req) {
			fmt.Print(chunk)
		}
		fmt.Println()
		return
	}

	res, err := api.Generate(ctx, req)
	if err != nil {
		fmt.Printf("Error contacting daemon: %v\n", err)
		fmt.Println("Is copyspell-d running?")
		os.Exit(1)
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = strings.Join(res.Errors, "; ")
		}
		fmt.Printf("Generation failed: %s\n", msg)
		os.Exit(1)
	}

	fmt.Println(res.Content)
	fmt.Printf("\n-- %s / %s, %d tokens, %d attempt(s)\n", res.Provider, res.Model, res.Tokens, res.Attempts)
}
