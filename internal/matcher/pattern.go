package matcher

import (
	"regexp"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/golang/groupcache/lru"
	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// regexTimeout bounds a single evaluation
const regexTimeout = time.Second

// maxCachedPatterns bounds the compiled pattern cache
const maxCachedPatterns = 1024

// compiled patterns keyed by source; a nil entry records an invalid pattern
var (
	patternCache   = lru.New(maxCachedPatterns)
	patternCacheMu sync.Mutex
)

// MatchPattern tests value against pattern. A pattern without regular
// expression metacharacters is compared literally; otherwise it must match
// the whole value. Matching is case-sensitive and an invalid pattern only
// matches an identical literal value.
func MatchPattern(pattern, value string) bool {
	if pattern == value {
		return true
	}
	if !isRegex(pattern) {
		return false
	}
	return MatchRegex(pattern, value)
}

// MatchRegex tests that pattern matches the whole of value.
func MatchRegex(pattern, value string) bool {
	re := compile(pattern)
	if re == nil {
		return false
	}
	matched, err := re.MatchString(value)
	if err != nil {
		logger.Warnf("failed to evaluate pattern %q: %v", pattern, err)
		return false
	}
	return matched
}

func isRegex(pattern string) bool {
	return regexp.QuoteMeta(pattern) != pattern
}

func compile(pattern string) *regexp2.Regexp {
	patternCacheMu.Lock()
	cached, ok := patternCache.Get(pattern)
	patternCacheMu.Unlock()
	if ok {
		return cached.(*regexp2.Regexp)
	}

	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.None)
	if err != nil {
		logger.Debugf("invalid pattern %q: %v", pattern, err)
		re = nil
	} else {
		re.MatchTimeout = regexTimeout
	}
	patternCacheMu.Lock()
	patternCache.Add(pattern, re)
	patternCacheMu.Unlock()
	return re
}
