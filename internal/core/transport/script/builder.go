package script

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// Every generated script is one line: a prologue that loads the host
// messaging assembly, a try block for the operation, and catch clauses that
// translate platform exceptions into sentinel tokens. The assembly load
// stays outside the try so a machine without the messaging stack fails the
// process instead of producing a parseable FAILED.
const prologue = "$ErrorActionPreference = 'Stop'; Add-Type -AssemblyName System.Messaging; try { "

const catchTail = " } catch [System.Messaging.MessageQueueException] {" +
	" if ($_.Exception.MessageQueueErrorCode -eq 'QueueNotFound') { Write-Output 'NOT_FOUND' }" +
	" else { Write-Output 'FAILED'; Write-Output ('ERROR:' + $_.Exception.Message) } }" +
	" catch { Write-Output 'FAILED'; Write-Output ('ERROR:' + $_.Exception.Message) }"

// escape prepares a value for a PowerShell single-quoted literal, where the
// quote itself is the only active character.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// controlSafe rejects values that would break the one-line script or the
// line-oriented output protocol. Queue names never reach here with control
// characters; labels and correlation IDs can.
func controlSafe(field, s string) error {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return qerrors.Validation(qerrors.CodeInvalidLabel,
				fmt.Sprintf("%s must not contain control characters", field))
		}
	}
	return nil
}

// hostPath renders a parsed pathname the way the host messaging API expects
// it: pathnames verbatim, everything else behind a FormatName: prefix.
func hostPath(p *transport.Pathname) string {
	switch p.Form {
	case transport.FormPrivate, transport.FormPublic:
		return p.Canonical
	case transport.FormFormatName:
		return "FormatName:" + strings.TrimPrefix(p.Canonical, "FORMATNAME:")
	default:
		return "FormatName:" + p.Canonical
	}
}

// addressable reports whether the host API can answer Exists/Create for this
// pathname. Direct and format-name grammars bypass the directory and cannot.
func addressable(p *transport.Pathname) bool {
	return p.Form == transport.FormPrivate || p.Form == transport.FormPublic
}

func buildExists(p *transport.Pathname) string {
	return prologue +
		fmt.Sprintf("if ([System.Messaging.MessageQueue]::Exists('%s')) { Write-Output 'SUCCESS' } else { Write-Output 'NOT_FOUND' }",
			escape(p.Canonical)) +
		catchTail
}

func buildCreate(p *transport.Pathname, opts transport.CreateOptions) (string, error) {
	if err := controlSafe("label", opts.Label); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "$q = [System.Messaging.MessageQueue]::Create('%s', $%t)", escape(p.Canonical), opts.Transactional)
	if opts.Label != "" {
		fmt.Fprintf(&b, "; $q.Label = '%s'", escape(opts.Label))
	}
	if opts.MaxSizeKB > 0 {
		fmt.Fprintf(&b, "; $q.MaximumQueueSize = %d", opts.MaxSizeKB)
	}
	if opts.Journal {
		b.WriteString("; $q.UseJournalQueue = $true")
	}
	b.WriteString("; Write-Output 'SUCCESS'")
	return prologue + b.String() + catchTail, nil
}

func buildDelete(p *transport.Pathname) string {
	body := fmt.Sprintf(
		"$path = '%s'; if (-not [System.Messaging.MessageQueue]::Exists($path)) { Write-Output 'NOT_FOUND'; exit 0 }; "+
			"[System.Messaging.MessageQueue]::Delete($path); Write-Output 'SUCCESS'",
		escape(p.Canonical))
	return prologue + body + catchTail
}

// buildSend ensures pathname-addressed destinations exist before sending,
// writes the body through BodyStream so bytes cross the boundary untouched,
// and reports the assigned message ID.
func buildSend(p *transport.Pathname, body []byte, label string, priority int, correlationID string) (string, error) {
	if err := controlSafe("label", label); err != nil {
		return "", err
	}
	if err := controlSafe("correlation id", correlationID); err != nil {
		return "", err
	}

	var b strings.Builder
	if addressable(p) {
		fmt.Fprintf(&b,
			"$path = '%s'; if (-not [System.Messaging.MessageQueue]::Exists($path)) { [void][System.Messaging.MessageQueue]::Create($path) }; "+
				"$q = New-Object System.Messaging.MessageQueue $path",
			escape(p.Canonical))
	} else {
		fmt.Fprintf(&b, "$q = New-Object System.Messaging.MessageQueue '%s'", escape(hostPath(p)))
	}
	fmt.Fprintf(&b,
		"; $m = New-Object System.Messaging.Message; $bytes = [System.Convert]::FromBase64String('%s')",
		base64.StdEncoding.EncodeToString(body))
	b.WriteString("; if ($bytes.Length -gt 0) { $m.BodyStream.Write($bytes, 0, $bytes.Length) }")
	if label != "" {
		fmt.Fprintf(&b, "; $m.Label = '%s'", escape(label))
	}
	fmt.Fprintf(&b, "; $m.Priority = [System.Messaging.MessagePriority]%d", priority)
	if correlationID != "" {
		fmt.Fprintf(&b, "; $m.CorrelationId = '%s'", escape(correlationID))
	}
	b.WriteString("; $q.Send($m); Write-Output 'SUCCESS'; Write-Output ('MESSAGEID:' + $m.Id)")
	return prologue + b.String() + catchTail, nil
}

// buildReceive takes or peeks the front message. The host maps its timeout
// exception to NO_MESSAGE so an empty queue is not a failure.
func buildReceive(p *transport.Pathname, timeoutMS int64, peek bool) string {
	verb := "Receive"
	if peek {
		verb = "Peek"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "$q = New-Object System.Messaging.MessageQueue '%s'", escape(hostPath(p)))
	b.WriteString("; [void]$q.MessageReadPropertyFilter.SetAll()")
	fmt.Fprintf(&b,
		"; try { $m = $q.%s([TimeSpan]::FromMilliseconds(%d)) } catch [System.Messaging.MessageQueueException] { "+
			"if ($_.Exception.MessageQueueErrorCode -eq 'IOTimeout') { Write-Output 'NO_MESSAGE'; exit 0 }; throw }",
		verb, timeoutMS)
	b.WriteString("; $len = [int]$m.BodyStream.Length; $buf = New-Object byte[] $len")
	b.WriteString("; if ($len -gt 0) { [void]$m.BodyStream.Read($buf, 0, $len) }")
	b.WriteString("; Write-Output 'SUCCESS'")
	b.WriteString("; Write-Output ('MESSAGEID:' + $m.Id)")
	b.WriteString("; Write-Output ('LABEL:' + $m.Label)")
	b.WriteString("; Write-Output ('PRIORITY:' + [int]$m.Priority)")
	b.WriteString("; $corr = ''; try { $corr = $m.CorrelationId } catch { }")
	b.WriteString("; if ($corr) { Write-Output ('CORRELATIONID:' + $corr) }")
	b.WriteString("; Write-Output ('BODY:' + [System.Convert]::ToBase64String($buf))")
	return prologue + b.String() + catchTail
}

func buildPurge(p *transport.Pathname) string {
	var b strings.Builder
	if addressable(p) {
		fmt.Fprintf(&b,
			"$path = '%s'; if (-not [System.Messaging.MessageQueue]::Exists($path)) { Write-Output 'NOT_FOUND'; exit 0 }; "+
				"$q = New-Object System.Messaging.MessageQueue $path",
			escape(p.Canonical))
	} else {
		fmt.Fprintf(&b, "$q = New-Object System.Messaging.MessageQueue '%s'", escape(hostPath(p)))
	}
	b.WriteString("; $q.Purge(); Write-Output 'SUCCESS'")
	return prologue + b.String() + catchTail
}

func buildCount(p *transport.Pathname) string {
	var b strings.Builder
	if addressable(p) {
		fmt.Fprintf(&b,
			"$path = '%s'; if (-not [System.Messaging.MessageQueue]::Exists($path)) { Write-Output 'NOT_FOUND'; exit 0 }; "+
				"$q = New-Object System.Messaging.MessageQueue $path",
			escape(p.Canonical))
	} else {
		fmt.Fprintf(&b, "$q = New-Object System.Messaging.MessageQueue '%s'", escape(hostPath(p)))
	}
	b.WriteString("; $c = 0; $e = $q.GetMessageEnumerator2(); while ($e.MoveNext()) { $c++ }")
	b.WriteString("; Write-Output 'SUCCESS'; Write-Output ('COUNT:' + $c)")
	return prologue + b.String() + catchTail
}

func buildList(machine string) string {
	if machine == "" {
		machine = "."
	}
	body := fmt.Sprintf(
		"$qs = [System.Messaging.MessageQueue]::GetPrivateQueuesByMachine('%s'); Write-Output 'SUCCESS'; "+
			"foreach ($q in $qs) { Write-Output ('QUEUE:' + $q.Path) }",
		escape(machine))
	return prologue + body + catchTail
}

func buildUpdate(p *transport.Pathname, opts transport.UpdateOptions) (string, error) {
	var b strings.Builder
	if addressable(p) {
		fmt.Fprintf(&b,
			"$path = '%s'; if (-not [System.Messaging.MessageQueue]::Exists($path)) { Write-Output 'NOT_FOUND'; exit 0 }; "+
				"$q = New-Object System.Messaging.MessageQueue $path",
			escape(p.Canonical))
	} else {
		fmt.Fprintf(&b, "$q = New-Object System.Messaging.MessageQueue '%s'", escape(hostPath(p)))
	}
	if opts.Label != nil {
		if err := controlSafe("label", *opts.Label); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "; $q.Label = '%s'", escape(*opts.Label))
	}
	if opts.MaxSizeKB != nil {
		fmt.Fprintf(&b, "; $q.MaximumQueueSize = %d", *opts.MaxSizeKB)
	}
	if opts.Journal != nil {
		fmt.Fprintf(&b, "; $q.UseJournalQueue = $%t", *opts.Journal)
	}
	b.WriteString("; Write-Output 'SUCCESS'")
	return prologue + b.String() + catchTail, nil
}
