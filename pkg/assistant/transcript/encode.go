package transcript

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	openDelim  = []byte("---\n")
	closeDelim = []byte("\n---\n")
)

// Encode renders the exchange to its on-disk form: a YAML front-matter block
// holding the metadata, a blank line, then the answer body.
func (e *Exchange) Encode() ([]byte, error) {
	meta, err := yaml.Marshal(&e.Meta)
	if err != nil {
		return nil, fmt.Errorf("transcript: encode meta: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(meta) + len(e.Answer) + 2*len(openDelim) + 2)
	buf.Write(openDelim)
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(e.Answer)
	return buf.Bytes(), nil
}

// Decode parses raw transcript file bytes into the exchange, replacing its
// current contents.
func (e *Exchange) Decode(raw []byte) error {
	rest, ok := bytes.CutPrefix(raw, openDelim)
	if !ok {
		return fmt.Errorf("transcript: missing front-matter delimiter")
	}
	meta, body, ok := bytes.Cut(rest, closeDelim)
	if !ok {
		return fmt.Errorf("transcript: unclosed front-matter block")
	}
	if err := yaml.Unmarshal(meta, &e.Meta); err != nil {
		return fmt.Errorf("transcript: front-matter parse error: %w", err)
	}
	// One blank line separates the front matter from the body.
	e.Answer = string(bytes.TrimPrefix(body, []byte("\n")))
	return nil
}
