// Package msmq implements the native backend: in-process calls into the
// platform queue runtime (mqrt.dll). Only the DLL plumbing is
// windows-specific; the constants and result-code mapping live here so the
// classification logic is testable on any platform.
package msmq

import (
	"fmt"
	"strings"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// Queue access modes for MQOpenQueue.
const (
	MQ_RECEIVE_ACCESS = 1
	MQ_SEND_ACCESS    = 2
	MQ_PEEK_ACCESS    = 32
	MQ_ADMIN_ACCESS   = 128
)

// Share modes for MQOpenQueue.
const (
	MQ_DENY_NONE          = 0
	MQ_DENY_RECEIVE_SHARE = 1
)

// Receive actions for MQReceiveMessage.
const (
	MQ_ACTION_RECEIVE      = 0x00000000
	MQ_ACTION_PEEK_CURRENT = 0x80000000
	MQ_ACTION_PEEK_NEXT    = 0x80000001
)

// Result codes (HRESULT). The facility code 0x0E marks the queue runtime.
const (
	MQ_OK                             = 0x00000000
	MQ_ERROR_QUEUE_NOT_FOUND          = 0xC00E0003
	MQ_ERROR_QUEUE_EXISTS             = 0xC00E0005
	MQ_ERROR_INVALID_PARAMETER        = 0xC00E0006
	MQ_ERROR_INVALID_HANDLE           = 0xC00E0007
	MQ_ERROR_SHARING_VIOLATION        = 0xC00E0009
	MQ_ERROR_SERVICE_NOT_AVAILABLE    = 0xC00E000B
	MQ_ERROR_ILLEGAL_QUEUE_PATHNAME   = 0xC00E0014
	MQ_ERROR_BUFFER_OVERFLOW          = 0xC00E001A
	MQ_ERROR_IO_TIMEOUT               = 0xC00E001B
	MQ_ERROR_ILLEGAL_FORMATNAME       = 0xC00E001E
	MQ_ERROR_FORMATNAME_BUFFER_SMALL  = 0xC00E001F
	MQ_ERROR_UNSUPPORTED_FORMATNAME   = 0xC00E0020
	MQ_ERROR_ACCESS_DENIED            = 0xC00E0025
	MQ_ERROR_QUEUE_NOT_ACTIVE         = 0xC00E0004
	MQ_ERROR_ILLEGAL_PROPERTY_VALUE   = 0xC00E0018
	MQ_ERROR_PROPERTY_NOTALLOWED      = 0xC00E003D
	MQ_ERROR_MACHINE_NOT_FOUND        = 0xC00E000D
	MQ_INFORMATION_PROPERTY           = 0x400E0001
	MQ_INFORMATION_DUPLICATE_PROPERTY = 0x400E0005
)

// Message property identifiers.
const (
	PROPID_M_CLASS         = 1
	PROPID_M_MSGID         = 2
	PROPID_M_CORRELATIONID = 3
	PROPID_M_PRIORITY      = 4
	PROPID_M_DELIVERY      = 5
	PROPID_M_BODY          = 9
	PROPID_M_BODY_SIZE     = 10
	PROPID_M_LABEL         = 11
	PROPID_M_LABEL_LEN     = 12
)

// Queue property identifiers.
const (
	PROPID_Q_PATHNAME    = 103
	PROPID_Q_JOURNAL     = 104
	PROPID_Q_QUOTA       = 105
	PROPID_Q_LABEL       = 108
	PROPID_Q_CREATE_TIME = 109
	PROPID_Q_MODIFY_TIME = 110
	PROPID_Q_TRANSACTION = 113
)

// Management API property identifiers. The object name passed to
// MQMgmtGetInfo ("MACHINE" vs "QUEUE=<formatname>") selects the family.
const (
	PROPID_MGMT_MSMQ_ACTIVEQUEUES      = 1
	PROPID_MGMT_MSMQ_PRIVATEQ          = 2
	PROPID_MGMT_MSMQ_CONNECTED         = 4
	PROPID_MGMT_QUEUE_PATHNAME         = 1
	PROPID_MGMT_QUEUE_FORMATNAME       = 2
	PROPID_MGMT_QUEUE_MESSAGE_COUNT    = 7
	PROPID_MGMT_QUEUE_BYTES_IN_QUEUE   = 8
	PROPID_MGMT_QUEUE_JOURNAL_MESSAGES = 9
)

// Queue journaling and transaction flags.
const (
	MQ_JOURNAL_NONE       = 0
	MQ_JOURNAL            = 1
	MQ_TRANSACTIONAL_NONE = 0
	MQ_TRANSACTIONAL      = 1
)

// Variant type codes used in property bags.
const (
	VT_NULL   = 1
	VT_I4     = 3
	VT_UI1    = 17
	VT_UI4    = 19
	VT_LPWSTR = 31
	VT_VECTOR = 0x1000
)

// succeeded reports whether hr is a success or informational result.
// Informational codes (severity bit clear) mean the call worked with a
// property warning.
func succeeded(hr uint32) bool {
	return hr&0x80000000 == 0
}

// mapHRESULT classifies a failed runtime result into the gateway taxonomy.
// Callers handle IO_TIMEOUT and BUFFER_OVERFLOW before mapping when those
// have flow meaning (empty receive, buffer growth).
func mapHRESULT(hr uint32) *qerrors.Error {
	switch hr {
	case MQ_ERROR_QUEUE_NOT_FOUND, MQ_ERROR_QUEUE_NOT_ACTIVE:
		return qerrors.Business(qerrors.CodeQueueNotFound, hrText(hr))
	case MQ_ERROR_QUEUE_EXISTS:
		return qerrors.Business(qerrors.CodeQueueExists, hrText(hr))
	case MQ_ERROR_SHARING_VIOLATION:
		return qerrors.Business(qerrors.CodeSharingViolation, hrText(hr))
	case MQ_ERROR_ACCESS_DENIED:
		return qerrors.Business(qerrors.CodeAccessDenied, hrText(hr))
	case MQ_ERROR_IO_TIMEOUT:
		return qerrors.Business(qerrors.CodeTimeout, hrText(hr))
	case MQ_ERROR_INVALID_PARAMETER, MQ_ERROR_ILLEGAL_QUEUE_PATHNAME,
		MQ_ERROR_ILLEGAL_FORMATNAME, MQ_ERROR_UNSUPPORTED_FORMATNAME,
		MQ_ERROR_ILLEGAL_PROPERTY_VALUE, MQ_ERROR_PROPERTY_NOTALLOWED:
		return qerrors.Validation(qerrors.CodeInvalidName, hrText(hr))
	case MQ_ERROR_SERVICE_NOT_AVAILABLE, MQ_ERROR_MACHINE_NOT_FOUND:
		return qerrors.Connection(qerrors.CodeUnreachable, hrText(hr), nil)
	default:
		return qerrors.System(qerrors.CodeInternal, hrText(hr), nil)
	}
}

// reachable reports whether a probe-open result proves the queue service is
// answering. Access-denied and not-found both mean a live service evaluated
// the request.
func reachable(hr uint32) bool {
	if succeeded(hr) {
		return true
	}
	switch hr {
	case MQ_ERROR_SERVICE_NOT_AVAILABLE, MQ_ERROR_MACHINE_NOT_FOUND:
		return false
	default:
		return true
	}
}

func hrText(hr uint32) string {
	name := ""
	switch hr {
	case MQ_ERROR_QUEUE_NOT_FOUND:
		name = "queue not found"
	case MQ_ERROR_QUEUE_NOT_ACTIVE:
		name = "queue not active"
	case MQ_ERROR_QUEUE_EXISTS:
		name = "queue already exists"
	case MQ_ERROR_INVALID_PARAMETER:
		name = "invalid parameter"
	case MQ_ERROR_INVALID_HANDLE:
		name = "invalid handle"
	case MQ_ERROR_SHARING_VIOLATION:
		name = "sharing violation"
	case MQ_ERROR_SERVICE_NOT_AVAILABLE:
		name = "queue service not available"
	case MQ_ERROR_MACHINE_NOT_FOUND:
		name = "machine not found"
	case MQ_ERROR_ILLEGAL_QUEUE_PATHNAME:
		name = "illegal queue pathname"
	case MQ_ERROR_BUFFER_OVERFLOW:
		name = "buffer overflow"
	case MQ_ERROR_IO_TIMEOUT:
		name = "receive timed out"
	case MQ_ERROR_ILLEGAL_FORMATNAME:
		name = "illegal format name"
	case MQ_ERROR_UNSUPPORTED_FORMATNAME:
		name = "unsupported format name operation"
	case MQ_ERROR_ACCESS_DENIED:
		name = "access denied"
	case MQ_ERROR_ILLEGAL_PROPERTY_VALUE:
		name = "illegal property value"
	case MQ_ERROR_PROPERTY_NOTALLOWED:
		name = "property not allowed"
	default:
		return fmt.Sprintf("queue runtime error 0x%08X", hr)
	}
	return fmt.Sprintf("%s (0x%08X)", name, hr)
}

// formatNameFor decides how to address a parsed pathname when opening a
// queue. Direct and format-name grammars already are format names; pathname
// grammars need a runtime lookup.
func formatNameFor(p *transport.Pathname) (formatName string, needLookup bool) {
	switch p.Form {
	case transport.FormFormatName:
		return strings.TrimPrefix(p.Canonical, "FORMATNAME:"), false
	case transport.FormDirectTCP, transport.FormDirectOS, transport.FormDirectHTTP:
		return p.Canonical, false
	default:
		return "", true
	}
}
