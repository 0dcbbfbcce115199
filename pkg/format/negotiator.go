// Package format negotiates outbound message bodies into a form the
// destination's document parser accepts. It performs a bounded, ordered
// search over named transformations instead of guessing once: different
// downstream consumers are intolerant of prefixes, BOMs, or declaration
// variants in ways that cannot be predicted statically.
package format

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/pkg/ordered"
)

// Strategy is one named body transformation attempted during negotiation.
type Strategy struct {
	Name  string
	Apply func([]byte) ([]byte, error)
}

// Negotiator walks an ordered strategy list and returns the first
// transformed body that satisfies the validity predicate.
type Negotiator struct {
	strategies []Strategy
}

func NewNegotiator(strategies ...Strategy) *Negotiator {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Negotiator{strategies: strategies}
}

// Negotiate returns the first valid candidate and the name of the strategy
// that produced it. When every strategy fails the ORIGINAL body comes back
// with a format error; the negotiator never fabricates content, the caller
// decides whether to send anyway.
func (n *Negotiator) Negotiate(body []byte) ([]byte, string, error) {
	out, strat, err := ordered.First(n.strategies,
		func(s Strategy) ([]byte, error) { return s.Apply(body) },
		Validate,
	)
	if err != nil {
		return body, "", qerrors.Format(qerrors.CodeFormatUnparseable,
			"no strategy produced a well-formed document", err)
	}
	log.Debug().Str("strategy", strat.Name).Int("bytes", len(out)).Msg("Negotiated message format")
	return out, strat.Name, nil
}

// IsLikelyXML gates negotiation: only bodies that look like markup are worth
// the walk.
func IsLikelyXML(body []byte) bool {
	t := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	return len(t) > 0 && t[0] == '<'
}

// Validate is the predicate downstream document consumers effectively
// enforce: a strict structural parse plus every namespace prefix bound in
// scope. The parser itself is prefix-agnostic, so the binding walk is done
// here.
func Validate(body []byte) error {
	if bytes.HasPrefix(body, utf8BOM) {
		return errors.New("byte-order mark present")
	}
	doc := etree.NewDocument()
	doc.ReadSettings.ValidateInput = true
	if err := doc.ReadFromBytes(body); err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return errors.New("no document element")
	}
	return checkPrefixes(root, map[string]bool{"xml": true})
}

func checkPrefixes(el *etree.Element, bound map[string]bool) error {
	scope := bound
	declares := false
	for _, a := range el.Attr {
		if a.Space == "xmlns" {
			declares = true
			break
		}
	}
	if declares {
		scope = copyScope(bound)
		for _, a := range el.Attr {
			if a.Space == "xmlns" {
				scope[a.Key] = true
			}
		}
	}
	if el.Space != "" && !scope[el.Space] {
		return fmt.Errorf("prefix %q is not bound", el.Space)
	}
	for _, a := range el.Attr {
		if a.Space != "" && a.Space != "xmlns" && !scope[a.Space] {
			return fmt.Errorf("prefix %q on attribute %q is not bound", a.Space, a.Key)
		}
	}
	for _, child := range el.ChildElements() {
		if err := checkPrefixes(child, scope); err != nil {
			return err
		}
	}
	return nil
}

func copyScope(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+2)
	for k := range m {
		out[k] = true
	}
	return out
}
