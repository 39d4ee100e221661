// Package tokens estimates token counts for usage reporting.
package tokens

import (
	"log"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding approximates the tokenization of the hosted chat models.
const DefaultEncoding = "cl100k_base"

func init() {
	// BPE ranks ship with the loader module; no download at runtime.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter counts tokens with a fixed BPE encoding. When the encoding is not
// available it degrades to a four-characters-per-token estimate.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter builds a counter for the named encoding.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return &Counter{}, err
	}
	return &Counter{enc: enc}, nil
}

// Count returns the number of tokens in text; 0 for the empty string.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.enc == nil {
		return estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func estimate(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

var (
	defaultOnce    sync.Once
	defaultCounter *Counter
)

// Count counts tokens with the default encoding.
func Count(text string) int {
	defaultOnce.Do(func() {
		c, err := NewCounter(DefaultEncoding)
		if err != nil {
			log.Printf("tokens: %s unavailable, using estimate: %v", DefaultEncoding, err)
		}
		defaultCounter = c
	})
	return defaultCounter.Count(text)
}
