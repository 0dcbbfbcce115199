package msmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

func TestMapHRESULTClassification(t *testing.T) {
	tests := []struct {
		name string
		hr   uint32
		kind qerrors.Kind
		code string
	}{
		{"queue not found", MQ_ERROR_QUEUE_NOT_FOUND, qerrors.KindBusiness, qerrors.CodeQueueNotFound},
		{"queue exists", MQ_ERROR_QUEUE_EXISTS, qerrors.KindBusiness, qerrors.CodeQueueExists},
		{"sharing violation", MQ_ERROR_SHARING_VIOLATION, qerrors.KindBusiness, qerrors.CodeSharingViolation},
		{"access denied", MQ_ERROR_ACCESS_DENIED, qerrors.KindBusiness, qerrors.CodeAccessDenied},
		{"io timeout", MQ_ERROR_IO_TIMEOUT, qerrors.KindBusiness, qerrors.CodeTimeout},
		{"bad pathname", MQ_ERROR_ILLEGAL_QUEUE_PATHNAME, qerrors.KindValidation, qerrors.CodeInvalidName},
		{"bad formatname", MQ_ERROR_ILLEGAL_FORMATNAME, qerrors.KindValidation, qerrors.CodeInvalidName},
		{"service down", MQ_ERROR_SERVICE_NOT_AVAILABLE, qerrors.KindConnection, qerrors.CodeUnreachable},
		{"machine missing", MQ_ERROR_MACHINE_NOT_FOUND, qerrors.KindConnection, qerrors.CodeUnreachable},
		{"unmapped", 0xC00E00FF, qerrors.KindSystem, qerrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHRESULT(tt.hr)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestMapHRESULTMessageCarriesCode(t *testing.T) {
	err := mapHRESULT(MQ_ERROR_SERVICE_NOT_AVAILABLE)
	assert.Contains(t, err.Error(), "0xC00E000B")

	err = mapHRESULT(0xC00E00FF)
	assert.Contains(t, err.Error(), "0xC00E00FF")
}

func TestSucceededAcceptsInformational(t *testing.T) {
	assert.True(t, succeeded(MQ_OK))
	assert.True(t, succeeded(MQ_INFORMATION_PROPERTY))
	assert.True(t, succeeded(MQ_INFORMATION_DUPLICATE_PROPERTY))
	assert.False(t, succeeded(MQ_ERROR_QUEUE_NOT_FOUND))
}

func TestReachableProbeSemantics(t *testing.T) {
	// A live service answered, even when it said no.
	assert.True(t, reachable(MQ_OK))
	assert.True(t, reachable(MQ_ERROR_ACCESS_DENIED))
	assert.True(t, reachable(MQ_ERROR_QUEUE_NOT_FOUND))
	assert.True(t, reachable(MQ_ERROR_SHARING_VIOLATION))

	// Nobody home.
	assert.False(t, reachable(MQ_ERROR_SERVICE_NOT_AVAILABLE))
	assert.False(t, reachable(MQ_ERROR_MACHINE_NOT_FOUND))
}

func TestFormatNameFor(t *testing.T) {
	parse := func(raw string) *transport.Pathname {
		p, err := transport.ParsePathname(raw)
		require.NoError(t, err)
		return p
	}

	fn, lookup := formatNameFor(parse(`FORMATNAME:PUBLIC=a0e2d16f-3a8e-4fc2-9ea2-6b5b7c0b8e11`))
	assert.False(t, lookup)
	assert.Equal(t, "PUBLIC=a0e2d16f-3a8e-4fc2-9ea2-6b5b7c0b8e11", fn)

	fn, lookup = formatNameFor(parse(`DIRECT=TCP:10.1.2.3\private$\orders`))
	assert.False(t, lookup)
	assert.Equal(t, `DIRECT=TCP:10.1.2.3\private$\orders`, fn)

	fn, lookup = formatNameFor(parse(`DIRECT=HTTPS://node7/msmq/orders`))
	assert.False(t, lookup)
	assert.Equal(t, `DIRECT=HTTPS://node7/msmq/orders`, fn)

	_, lookup = formatNameFor(parse(`.\private$\orders`))
	assert.True(t, lookup, "pathname grammars resolve through the runtime")

	_, lookup = formatNameFor(parse(`server01\orders`))
	assert.True(t, lookup)
}
