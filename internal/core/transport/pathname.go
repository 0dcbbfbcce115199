package transport

import (
	"fmt"
	"net"
	"strings"

	"github.com/quegate/quegate/internal/core/qerrors"
)

// MaxPathnameLength is the platform limit on a full queue pathname.
const MaxPathnameLength = 124

// PathForm classifies the addressing grammar a pathname uses.
type PathForm int

const (
	FormUnknown PathForm = iota
	FormPrivate
	FormPublic
	FormDirectTCP
	FormDirectOS
	FormDirectHTTP
	FormFormatName
)

func (f PathForm) String() string {
	switch f {
	case FormPrivate:
		return "private"
	case FormPublic:
		return "public"
	case FormDirectTCP:
		return "direct-tcp"
	case FormDirectOS:
		return "direct-os"
	case FormDirectHTTP:
		return "direct-http"
	case FormFormatName:
		return "format-name"
	default:
		return "unknown"
	}
}

// Pathname is one parsed queue address. Canonical is the normalized form the
// gateway uses as the queue key everywhere (store rows, metrics labels,
// backend calls).
type Pathname struct {
	Raw       string
	Canonical string
	Form      PathForm
	Machine   string
	Queue     string
	IsPrivate bool
}

func (p *Pathname) String() string {
	return p.Canonical
}

const privateSegment = "private$"

// invalidLeafChars are forbidden inside a queue name segment.
const invalidLeafChars = `\/*?"<>|`

// ParsePathname validates and canonicalizes a queue address in any of the
// accepted grammars:
//
//	orders                                  (bare, becomes .\private$\orders)
//	.\private$\orders                       (local private)
//	server01\private$\orders                (remote private)
//	server01\orders                         (public)
//	DIRECT=TCP:192.168.1.10\private$\orders (direct over TCP)
//	DIRECT=OS:server01\private$\orders      (direct over host name)
//	DIRECT=HTTP://server01/msmq/orders      (web service, HTTPS too)
//	FORMATNAME:PUBLIC=<guid>                (public format name)
//	FORMATNAME:PRIVATE=<guid>\<hex>         (private format name)
//
// Failures are validation errors carrying the violated rule.
func ParsePathname(raw string) (*Pathname, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, qerrors.Validation(qerrors.CodeInvalidName, "queue name is empty")
	}
	if len(name) > MaxPathnameLength {
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			fmt.Sprintf("pathname exceeds %d characters", MaxPathnameLength))
	}

	upper := strings.ToUpper(name)
	switch {
	case strings.HasPrefix(upper, "FORMATNAME:"):
		return parseFormatName(name, name[len("FORMATNAME:"):])
	case strings.HasPrefix(upper, "DIRECT="):
		return parseDirect(name, name[len("DIRECT="):])
	case strings.Contains(name, `\`):
		return parseMachinePath(name)
	default:
		if err := validateLeaf(name); err != nil {
			return nil, err
		}
		return &Pathname{
			Raw:       raw,
			Canonical: `.\` + privateSegment + `\` + name,
			Form:      FormPrivate,
			Machine:   ".",
			Queue:     name,
			IsPrivate: true,
		}, nil
	}
}

// Canonicalize is the convenience form of ParsePathname for callers that only
// need the normalized string.
func Canonicalize(raw string) (string, error) {
	p, err := ParsePathname(raw)
	if err != nil {
		return "", err
	}
	return p.Canonical, nil
}

func parseMachinePath(name string) (*Pathname, error) {
	parts := strings.Split(name, `\`)
	switch len(parts) {
	case 2:
		machine, leaf := parts[0], parts[1]
		if err := validateMachine(machine); err != nil {
			return nil, err
		}
		if err := validateLeaf(leaf); err != nil {
			return nil, err
		}
		// "." in the middle position is the private$ marker misuse;
		// a 2-segment path is always public.
		return &Pathname{
			Raw:       name,
			Canonical: canonMachine(machine) + `\` + leaf,
			Form:      FormPublic,
			Machine:   canonMachine(machine),
			Queue:     leaf,
		}, nil
	case 3:
		machine, marker, leaf := parts[0], parts[1], parts[2]
		if !strings.EqualFold(marker, privateSegment) {
			return nil, qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("unexpected path segment %q, want %q", marker, privateSegment))
		}
		if err := validateMachine(machine); err != nil {
			return nil, err
		}
		if err := validateLeaf(leaf); err != nil {
			return nil, err
		}
		return &Pathname{
			Raw:       name,
			Canonical: canonMachine(machine) + `\` + privateSegment + `\` + leaf,
			Form:      FormPrivate,
			Machine:   canonMachine(machine),
			Queue:     leaf,
			IsPrivate: true,
		}, nil
	default:
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			fmt.Sprintf("pathname has %d segments, want 2 or 3", len(parts)))
	}
}

func parseDirect(name, rest string) (*Pathname, error) {
	upper := strings.ToUpper(rest)
	switch {
	case strings.HasPrefix(upper, "TCP:"):
		return parseDirectHost(name, rest[len("TCP:"):], FormDirectTCP)
	case strings.HasPrefix(upper, "OS:"):
		return parseDirectHost(name, rest[len("OS:"):], FormDirectOS)
	case strings.HasPrefix(upper, "HTTP://"):
		return parseDirectHTTP(name, rest[len("HTTP://"):], "HTTP")
	case strings.HasPrefix(upper, "HTTPS://"):
		return parseDirectHTTP(name, rest[len("HTTPS://"):], "HTTPS")
	default:
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			"DIRECT= supports TCP:, OS:, HTTP:// and HTTPS:// only")
	}
}

func parseDirectHost(name, body string, form PathForm) (*Pathname, error) {
	host, queuePart, ok := strings.Cut(body, `\`)
	if !ok || queuePart == "" {
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			"direct pathname needs a queue after the address")
	}
	if form == FormDirectTCP {
		if ip := net.ParseIP(host); ip == nil {
			return nil, qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("DIRECT=TCP address %q is not an IP address", host))
		}
	} else {
		if err := validateMachine(host); err != nil {
			return nil, err
		}
	}

	leaf, isPrivate, err := splitQueuePart(queuePart)
	if err != nil {
		return nil, err
	}
	scheme := "TCP:"
	if form == FormDirectOS {
		scheme = "OS:"
		host = strings.ToLower(host)
	}
	canonical := "DIRECT=" + scheme + host + `\`
	if isPrivate {
		canonical += privateSegment + `\`
	}
	canonical += leaf
	return &Pathname{
		Raw:       name,
		Canonical: canonical,
		Form:      form,
		Machine:   host,
		Queue:     leaf,
		IsPrivate: isPrivate,
	}, nil
}

func parseDirectHTTP(name, body, scheme string) (*Pathname, error) {
	host, path, ok := strings.Cut(body, "/")
	if !ok || path == "" {
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			"web pathname needs a path after the host")
	}
	if err := validateMachine(host); err != nil {
		return nil, err
	}
	segments := strings.Split(path, "/")
	isPrivate := false
	for _, seg := range segments {
		if seg == "" {
			return nil, qerrors.Validation(qerrors.CodeInvalidName,
				"web pathname has an empty path segment")
		}
		if strings.EqualFold(seg, privateSegment) {
			isPrivate = true
			continue
		}
		if err := validateLeaf(seg); err != nil {
			return nil, err
		}
	}
	leaf := segments[len(segments)-1]
	if strings.EqualFold(leaf, privateSegment) {
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			"web pathname is missing the queue name")
	}
	return &Pathname{
		Raw:       name,
		Canonical: "DIRECT=" + scheme + "://" + strings.ToLower(host) + "/" + path,
		Form:      FormDirectHTTP,
		Machine:   strings.ToLower(host),
		Queue:     leaf,
		IsPrivate: isPrivate,
	}, nil
}

func parseFormatName(name, rest string) (*Pathname, error) {
	upper := strings.ToUpper(rest)
	switch {
	case strings.HasPrefix(upper, "PUBLIC="):
		guid, err := canonGUID(rest[len("PUBLIC="):])
		if err != nil {
			return nil, err
		}
		return &Pathname{
			Raw:       name,
			Canonical: "FORMATNAME:PUBLIC=" + guid,
			Form:      FormFormatName,
			Queue:     guid,
		}, nil
	case strings.HasPrefix(upper, "PRIVATE="):
		body := rest[len("PRIVATE="):]
		guidPart, ordinal, ok := strings.Cut(body, `\`)
		if !ok || ordinal == "" {
			return nil, qerrors.Validation(qerrors.CodeInvalidName,
				`FORMATNAME:PRIVATE= needs <guid>\<ordinal>`)
		}
		guid, err := canonGUID(guidPart)
		if err != nil {
			return nil, err
		}
		if !isHex(ordinal) {
			return nil, qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("private format-name ordinal %q is not hexadecimal", ordinal))
		}
		canonical := "FORMATNAME:PRIVATE=" + guid + `\` + strings.ToLower(ordinal)
		return &Pathname{
			Raw:       name,
			Canonical: canonical,
			Form:      FormFormatName,
			Queue:     strings.ToLower(ordinal),
			IsPrivate: true,
		}, nil
	default:
		return nil, qerrors.Validation(qerrors.CodeInvalidName,
			"FORMATNAME: supports PUBLIC= and PRIVATE= only")
	}
}

func splitQueuePart(part string) (leaf string, isPrivate bool, err error) {
	if first, rest, ok := strings.Cut(part, `\`); ok {
		if !strings.EqualFold(first, privateSegment) {
			return "", false, qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("unexpected path segment %q, want %q", first, privateSegment))
		}
		if strings.Contains(rest, `\`) {
			return "", false, qerrors.Validation(qerrors.CodeInvalidName,
				"queue name must be a single segment")
		}
		if err := validateLeaf(rest); err != nil {
			return "", false, err
		}
		return rest, true, nil
	}
	if err := validateLeaf(part); err != nil {
		return "", false, err
	}
	return part, false, nil
}

func validateLeaf(leaf string) error {
	if leaf == "" {
		return qerrors.Validation(qerrors.CodeInvalidName, "queue name segment is empty")
	}
	if leaf == "." || leaf == ".." {
		return qerrors.Validation(qerrors.CodeInvalidName,
			fmt.Sprintf("queue name %q is reserved", leaf))
	}
	if strings.EqualFold(leaf, privateSegment) {
		return qerrors.Validation(qerrors.CodeInvalidName,
			fmt.Sprintf("queue name %q is reserved", leaf))
	}
	for _, r := range leaf {
		if r < 0x20 {
			return qerrors.Validation(qerrors.CodeInvalidName,
				"queue name contains a control character")
		}
		if strings.ContainsRune(invalidLeafChars, r) {
			return qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("invalid character %q in queue name", r))
		}
	}
	if leaf != strings.TrimSpace(leaf) {
		return qerrors.Validation(qerrors.CodeInvalidName,
			"queue name has leading or trailing spaces")
	}
	return nil
}

func validateMachine(machine string) error {
	if machine == "" {
		return qerrors.Validation(qerrors.CodeInvalidName, "machine name is empty")
	}
	if machine == "." {
		return nil
	}
	for _, r := range machine {
		ok := r == '.' || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z')
		if !ok {
			return qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("invalid character %q in machine name", r))
		}
	}
	return nil
}

func canonMachine(machine string) string {
	if machine == "." {
		return "."
	}
	return strings.ToLower(machine)
}

// canonGUID accepts 8-4-4-4-12 hex, braced or not, and returns the unbraced
// lowercase form.
func canonGUID(s string) (string, error) {
	g := strings.TrimSpace(s)
	if strings.HasPrefix(g, "{") && strings.HasSuffix(g, "}") {
		g = g[1 : len(g)-1]
	}
	groups := strings.Split(g, "-")
	want := []int{8, 4, 4, 4, 12}
	if len(groups) != len(want) {
		return "", qerrors.Validation(qerrors.CodeInvalidName,
			fmt.Sprintf("%q is not a GUID", s))
	}
	for i, grp := range groups {
		if len(grp) != want[i] || !isHex(grp) {
			return "", qerrors.Validation(qerrors.CodeInvalidName,
				fmt.Sprintf("%q is not a GUID", s))
		}
	}
	return strings.ToLower(g), nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		ok := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
		if !ok {
			return false
		}
	}
	return true
}
