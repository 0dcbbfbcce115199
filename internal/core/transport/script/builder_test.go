package script

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

func mustParse(t *testing.T, name string) *transport.Pathname {
	t.Helper()
	p, err := transport.ParsePathname(name)
	require.NoError(t, err)
	return p
}

func TestEscapeDoublesQuotes(t *testing.T) {
	assert.Equal(t, "it''s", escape("it's"))
	assert.Equal(t, "''''", escape("''"))
	assert.Equal(t, "plain", escape("plain"))
	assert.Equal(t, "", escape(""))
}

func TestControlSafe(t *testing.T) {
	assert.NoError(t, controlSafe("label", "orders ready"))
	assert.NoError(t, controlSafe("label", ""))

	for _, bad := range []string{"a\nb", "a\rb", "a\x00b", "a\tb", "a\x7fb"} {
		err := controlSafe("label", bad)
		require.Error(t, err)
		assert.Equal(t, qerrors.KindValidation, qerrors.KindOf(err))
		assert.Equal(t, qerrors.CodeInvalidLabel, qerrors.CodeOf(err))
	}
}

func TestHostPath(t *testing.T) {
	assert.Equal(t, `.\private$\orders`, hostPath(mustParse(t, "orders")))
	assert.Equal(t, `FormatName:DIRECT=TCP:192.168.0.12\private$\orders`,
		hostPath(mustParse(t, `DIRECT=TCP:192.168.0.12\private$\orders`)))
	assert.Equal(t, "FormatName:PUBLIC=6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		hostPath(mustParse(t, "FORMATNAME:PUBLIC={6BA7B810-9DAD-11D1-80B4-00C04FD430C8}")))
}

func TestBuildSendPathnameEnsuresQueue(t *testing.T) {
	p := mustParse(t, "orders")
	script, err := buildSend(p, []byte{0x00, 0xff, 0x10}, "order created", 5, "")
	require.NoError(t, err)

	// Destination is created when missing, body crosses as Base64 through
	// the stream API, and the assigned ID comes back.
	assert.Contains(t, script, "MessageQueue]::Exists($path)")
	assert.Contains(t, script, "MessageQueue]::Create($path)")
	assert.Contains(t, script, base64.StdEncoding.EncodeToString([]byte{0x00, 0xff, 0x10}))
	assert.Contains(t, script, "$m.BodyStream.Write")
	assert.Contains(t, script, "[System.Messaging.MessagePriority]5")
	assert.Contains(t, script, "$m.Label = 'order created'")
	assert.Contains(t, script, "MESSAGEID:")
	assert.NotContains(t, script, "\n")
}

func TestBuildSendDirectSkipsEnsure(t *testing.T) {
	p := mustParse(t, `DIRECT=OS:worker-07\private$\jobs`)
	script, err := buildSend(p, []byte("x"), "", 3, "")
	require.NoError(t, err)

	assert.NotContains(t, script, "::Exists")
	assert.Contains(t, script, `FormatName:DIRECT=OS:worker-07\private$\jobs`)
}

func TestBuildSendEscapesUserData(t *testing.T) {
	p := mustParse(t, "o'brien")
	script, err := buildSend(p, nil, "it's urgent", 3, "")
	require.NoError(t, err)

	assert.Contains(t, script, `o''brien`)
	assert.Contains(t, script, "it''s urgent")
}

func TestBuildSendRejectsControlCharacters(t *testing.T) {
	p := mustParse(t, "orders")

	_, err := buildSend(p, nil, "a\nSUCCESS", 3, "")
	assert.Equal(t, qerrors.CodeInvalidLabel, qerrors.CodeOf(err))

	_, err = buildSend(p, nil, "", 3, "corr\r\n")
	assert.Equal(t, qerrors.CodeInvalidLabel, qerrors.CodeOf(err))
}

func TestBuildReceive(t *testing.T) {
	p := mustParse(t, "orders")

	script := buildReceive(p, 2500, false)
	assert.Contains(t, script, "$q.Receive([TimeSpan]::FromMilliseconds(2500))")
	assert.Contains(t, script, "IOTimeout")
	assert.Contains(t, script, "NO_MESSAGE")
	assert.Contains(t, script, "BODY:")

	peek := buildReceive(p, 0, true)
	assert.Contains(t, peek, "$q.Peek([TimeSpan]::FromMilliseconds(0))")
}

func TestBuildCreateOptions(t *testing.T) {
	p := mustParse(t, "orders")
	script, err := buildCreate(p, transport.CreateOptions{
		Label:         "order intake",
		MaxSizeKB:     2048,
		Transactional: true,
		Journal:       true,
	})
	require.NoError(t, err)

	assert.Contains(t, script, `::Create('.\private$\orders', $true)`)
	assert.Contains(t, script, "$q.Label = 'order intake'")
	assert.Contains(t, script, "$q.MaximumQueueSize = 2048")
	assert.Contains(t, script, "$q.UseJournalQueue = $true")
}

func TestBuildUpdateOnlySetFields(t *testing.T) {
	p := mustParse(t, "orders")
	label := "renamed"
	script, err := buildUpdate(p, transport.UpdateOptions{Label: &label})
	require.NoError(t, err)

	assert.Contains(t, script, "$q.Label = 'renamed'")
	assert.NotContains(t, script, "MaximumQueueSize")
	assert.NotContains(t, script, "UseJournalQueue")
}

func TestBuildListUsesMachine(t *testing.T) {
	assert.Contains(t, buildList("worker-07"), "GetPrivateQueuesByMachine('worker-07')")
	assert.Contains(t, buildList(""), "GetPrivateQueuesByMachine('.')")
}

// quoteRunsEven reports whether every run of single quotes has even length,
// which is what keeps the quoted literals closed.
func quoteRunsEven(s string) bool {
	run := 0
	for _, r := range s {
		if r == '\'' {
			run++
			continue
		}
		if run%2 != 0 {
			return false
		}
		run = 0
	}
	return run%2 == 0
}

func FuzzEscape(f *testing.F) {
	f.Add("plain")
	f.Add("it's")
	f.Add("''")
	f.Add("a'b'c")
	f.Fuzz(func(t *testing.T, s string) {
		e := escape(s)
		if !quoteRunsEven(e) {
			t.Fatalf("escape(%q) = %q leaves an unpaired quote", s, e)
		}
		if strings.ReplaceAll(e, "''", "'") != s {
			t.Fatalf("escape(%q) = %q does not round-trip", s, e)
		}
	})
}

func FuzzBuildSend(f *testing.F) {
	f.Add([]byte("body"), "label", "corr")
	f.Add([]byte{0x00, 0x01}, "it's", "")
	f.Add([]byte{}, "a\nb", "x")
	f.Fuzz(func(t *testing.T, body []byte, label, correl string) {
		p, err := transport.ParsePathname("fuzz-target")
		if err != nil {
			t.Fatal(err)
		}
		script, err := buildSend(p, body, label, 3, correl)
		if err != nil {
			// Rejected input never produces a script.
			return
		}
		if strings.ContainsAny(script, "\r\n") {
			t.Fatalf("generated script contains raw line break: %q", script)
		}
		// Every literal opens and closes and escaped quotes come in pairs,
		// so a well-formed script always has an even quote count.
		if strings.Count(script, "'")%2 != 0 {
			t.Fatalf("generated script leaves a quoted literal open: %q", script)
		}
	})
}
