package sign

import (
	"net/url"
	"strconv"
)

// Params is an ordered list of request parameters. The venue verifies
// signatures over the exact parameter order the client sent, so a map
// (url.Values) cannot be used for signed requests.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

// NewParams returns an empty parameter list.
func NewParams() *Params {
	return &Params{}
}

// Set appends a key/value pair. Empty values are skipped: the canonical
// string contains only parameters that were actually sent.
func (p *Params) Set(key, value string) *Params {
	if value == "" {
		return p
	}
	p.pairs = append(p.pairs, pair{key: key, value: value})
	return p
}

// SetInt appends an integer parameter. Zero is treated as unset.
func (p *Params) SetInt(key string, value int64) *Params {
	if value == 0 {
		return p
	}
	return p.Set(key, strconv.FormatInt(value, 10))
}

// Clone returns an independent copy. Sign mutates the list, so callers that
// may sign the same parameters more than once sign a clone.
func (p *Params) Clone() *Params {
	return &Params{pairs: append([]pair(nil), p.pairs...)}
}

// Len returns the number of parameters set.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Encode returns the canonical query string: "&"-joined key=value pairs in
// insertion order, with values URL-escaped. This is the exact byte sequence
// that gets signed and sent.
func (p *Params) Encode() string {
	var buf []byte
	for i, kv := range p.pairs {
		if i > 0 {
			buf = append(buf, '&')
		}
		buf = append(buf, kv.key...)
		buf = append(buf, '=')
		buf = append(buf, url.QueryEscape(kv.value)...)
	}
	return string(buf)
}

// Sign appends a timestamp parameter, computes the signature over the
// canonical string, appends it as the final parameter, and returns the
// ready-to-send query string.
func (p *Params) Sign(secret string, timestampMs int64) string {
	p.SetInt("timestamp", timestampMs)
	sig := Signature(secret, p.Encode())
	p.Set("signature", sig)
	return p.Encode()
}
