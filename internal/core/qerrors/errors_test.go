package qerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageComposition(t *testing.T) {
	err := Connection(CodeUnreachable, "service not available", errors.New("rc=0xC00E000B")).
		WithOp("send").
		WithQueue(`.\private$\orders`)

	msg := err.Error()
	assert.Contains(t, msg, "send: ")
	assert.Contains(t, msg, "connection error [BROKER_UNREACHABLE]")
	assert.Contains(t, msg, `queue=.\private$\orders`)
	assert.Contains(t, msg, "rc=0xC00E000B")
}

func TestWithOpDoesNotMutateOriginal(t *testing.T) {
	base := Business(CodeQueueNotFound, "no such queue")
	annotated := base.WithOp("purge")

	assert.Empty(t, base.Op)
	assert.Equal(t, "purge", annotated.Op)
	assert.Equal(t, base.Code, annotated.Code)
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"validation", Validation(CodeInvalidName, "bad name"), KindValidation},
		{"business", Business(CodeQueueExists, "already there"), KindBusiness},
		{"connection", Connection(CodeUnreachable, "down", nil), KindConnection},
		{"system", System(CodeHostOutput, "garbled", nil), KindSystem},
		{"format", Format(CodeFormatUnparseable, "not xml", nil), KindFormat},
		{"foreign", errors.New("plain"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := Connection(CodeReconnectFailed, "gave up after 3 attempts", nil)
	wrapped := fmt.Errorf("ensure connection: %w", inner)

	assert.True(t, IsConnection(wrapped))
	assert.Equal(t, CodeReconnectFailed, CodeOf(wrapped))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := System(CodeHostSpawn, "powershell failed", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(Business(CodeQueueNotFound, "")))
	assert.False(t, IsNotFound(Business(CodeQueueExists, "")))
	assert.True(t, IsNoMessage(Business(CodeNoMessage, "")))
	assert.False(t, IsConnection(Validation(CodeInvalidName, "")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "business", KindBusiness.String())
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "system", KindSystem.String())
	assert.Equal(t, "format", KindFormat.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
