package search

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
)

// DefaultPatternCacheSize is the default number of compiled patterns kept.
const DefaultPatternCacheSize = 128

// Compiler turns requests into compiled patterns, caching the results.
// Interactive search recompiles the same prefixes on every keystroke, so a
// small LRU avoids most of that work.
//
// Compiler is safe for concurrent use.
type Compiler struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// NewCompiler creates a compiler with an LRU of the given size.
// A non-positive size uses DefaultPatternCacheSize.
func NewCompiler(cacheSize int) *Compiler {
	if cacheSize <= 0 {
		cacheSize = DefaultPatternCacheSize
	}
	cache, _ := lru.New[string, *regexp.Regexp](cacheSize)
	return &Compiler{cache: cache}
}

// Compile returns the compiled pattern for req.
// Returns ERR_404_QUERY_EMPTY for a blank pattern and ERR_403_INVALID_PATTERN
// when the expression does not compile.
func (c *Compiler) Compile(req Request) (*regexp.Regexp, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, ontoerrors.New(ontoerrors.ErrCodeQueryEmpty, "search pattern is empty", nil).
			WithSuggestion("Type a word or regular expression to search for")
	}

	expr := Expression(req)
	if re, ok := c.cache.Get(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, ontoerrors.New(ontoerrors.ErrCodeInvalidPattern, "invalid search pattern", err).
			WithDetail("pattern", req.Pattern).
			WithSuggestion("Check the regular expression syntax, or use --literal")
	}

	c.cache.Add(expr, re)
	return re, nil
}

// Len returns the number of cached patterns.
func (c *Compiler) Len() int {
	return c.cache.Len()
}

// Expression returns the regular expression source for req.
func Expression(req Request) string {
	expr := req.Pattern
	if req.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if req.CaseInsensitive {
		expr = "(?i)" + expr
	}
	return expr
}
