package generator

import (
	"sync"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// EstimateTokens counts tokens for a prompt/completion pair with the
// cl100k encoding. Providers that report usage win; this only fills in
// when the upstream response carried no usage block. On codec failure
// it falls back to a chars/4 approximation.
func EstimateTokens(texts ...string) int {
	codecOnce.Do(func() {
		codec, _ = tokenizer.Get(tokenizer.Cl100kBase)
	})

	total := 0
	for _, text := range texts {
		if text == "" {
			continue
		}
		if codec == nil {
			total += utf8.RuneCountInString(text) / 4
			continue
		}
		ids, _, err := codec.Encode(text)
		if err != nil {
			total += utf8.RuneCountInString(text) / 4
			continue
		}
		total += len(ids)
	}
	return total
}
