package matcher

import (
	"golang.org/x/text/encoding/htmlindex"

	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// decodeBody converts body to a string using the declared charset. An absent
// or unknown charset is treated as UTF-8.
func decodeBody(body []byte, charset string) string {
	if charset == "" {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		logger.Debugf("unknown charset %q, decoding body as UTF-8", charset)
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		logger.Tracef("failed to decode body as %s: %v", charset, err)
		return string(body)
	}
	return string(decoded)
}
