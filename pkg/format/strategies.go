package format

import (
	"bytes"
	"errors"

	"github.com/beevik/etree"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// DefaultStrategies is the negotiation order: cheapest first, most invasive
// last. Downstream document consumers differ in what they tolerate, so the
// walk stops at the first form that satisfies Validate.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "asis", Apply: asis},
		{Name: "trim", Apply: trim},
		{Name: "declaration", Apply: declaration},
		{Name: "stripns", Apply: stripNamespaces},
		{Name: "reindent", Apply: reindent},
		{Name: "escape", Apply: escapeStray},
		{Name: "cdata", Apply: cdataEnvelope},
	}
}

func asis(body []byte) ([]byte, error) { return body, nil }

// trim drops the byte-order mark, surrounding whitespace, and normalizes
// line endings.
func trim(body []byte) ([]byte, error) {
	out := bytes.TrimPrefix(body, utf8BOM)
	out = bytes.TrimSpace(out)
	out = bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))
	return out, nil
}

// declaration replaces whatever prolog the body carries with a standard one.
// Consumers reject declared encodings they cannot decode, so the header is
// rewritten rather than patched.
func declaration(body []byte) ([]byte, error) {
	out, _ := trim(body)
	if bytes.HasPrefix(out, []byte("<?xml")) {
		if i := bytes.Index(out, []byte("?>")); i >= 0 {
			out = bytes.TrimLeft(out[i+2:], " \t\r\n")
		}
	}
	return append([]byte(xmlDeclaration), out...), nil
}

// stripNamespaces removes every prefix and xmlns declaration. Prefix-bound
// documents whose bindings never made it across the wire become plain
// local-name documents.
func stripNamespaces(body []byte) ([]byte, error) {
	doc, err := lenientParse(body)
	if err != nil {
		return nil, err
	}
	stripElement(doc.Root())
	return doc.WriteToBytes()
}

func stripElement(el *etree.Element) {
	el.Space = ""
	attrs := el.Attr[:0]
	for _, a := range el.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		a.Space = ""
		attrs = append(attrs, a)
	}
	el.Attr = attrs
	for _, child := range el.ChildElements() {
		stripElement(child)
	}
}

// reindent runs the body through a lenient structural parse and re-serializes
// it with 2-space indentation, repairing tag mismatches the lenient parser
// tolerates.
func reindent(body []byte) ([]byte, error) {
	doc, err := lenientParse(body)
	if err != nil {
		return nil, err
	}
	doc.Indent(2)
	return doc.WriteToBytes()
}

// escapeStray rewrites ampersands that start no character reference and
// angle brackets that open no tag.
func escapeStray(body []byte) ([]byte, error) {
	out, _ := trim(body)
	var b bytes.Buffer
	b.Grow(len(out) + 16)
	for i := 0; i < len(out); i++ {
		switch c := out[i]; c {
		case '&':
			if isReferenceStart(out[i+1:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			if i+1 < len(out) && isTagStart(out[i+1]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&lt;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.Bytes(), nil
}

func isReferenceStart(rest []byte) bool {
	end := bytes.IndexByte(rest, ';')
	if end <= 0 || end > 10 {
		return false
	}
	ref := rest[:end]
	if ref[0] == '#' {
		if len(ref) < 2 {
			return false
		}
		digits := ref[1:]
		if digits[0] == 'x' || digits[0] == 'X' {
			digits = digits[1:]
		}
		if len(digits) == 0 {
			return false
		}
		for _, c := range digits {
			if !isHexDigit(c) {
				return false
			}
		}
		return true
	}
	for _, c := range ref {
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isTagStart(c byte) bool {
	return c == '/' || c == '!' || c == '?' || c == '_' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// cdataEnvelope wraps the raw body in a character-data envelope, the last
// resort for payloads that are not markup at all. Occurrences of the CDATA
// terminator are split across sections.
func cdataEnvelope(body []byte) ([]byte, error) {
	payload := bytes.ReplaceAll(body, []byte("]]>"), []byte("]]]]><![CDATA[>"))
	var b bytes.Buffer
	b.Grow(len(payload) + 32)
	b.WriteString("<payload><![CDATA[")
	b.Write(payload)
	b.WriteString("]]></payload>")
	return b.Bytes(), nil
}

func lenientParse(body []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("no document element")
	}
	return doc, nil
}
