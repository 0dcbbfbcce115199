//go:build windows

package msmq

import (
	"golang.org/x/sys/windows"
)

var (
	mqrt = windows.NewLazySystemDLL("mqrt.dll")

	procMQOpenQueue            = mqrt.NewProc("MQOpenQueue")
	procMQCloseQueue           = mqrt.NewProc("MQCloseQueue")
	procMQCreateQueue          = mqrt.NewProc("MQCreateQueue")
	procMQDeleteQueue          = mqrt.NewProc("MQDeleteQueue")
	procMQSendMessage          = mqrt.NewProc("MQSendMessage")
	procMQReceiveMessage       = mqrt.NewProc("MQReceiveMessage")
	procMQGetQueueProperties   = mqrt.NewProc("MQGetQueueProperties")
	procMQSetQueueProperties   = mqrt.NewProc("MQSetQueueProperties")
	procMQPathNameToFormatName = mqrt.NewProc("MQPathNameToFormatName")
	procMQPurgeQueue           = mqrt.NewProc("MQPurgeQueue")
	procMQMgmtGetInfo          = mqrt.NewProc("MQMgmtGetInfo")
	procMQFreeMemory           = mqrt.NewProc("MQFreeMemory")
)

// runtimeAvailable reports whether the queue runtime DLL and its entry
// points resolve on this machine. This is probe step one.
func runtimeAvailable() error {
	if err := mqrt.Load(); err != nil {
		return err
	}
	return procMQOpenQueue.Find()
}

// call invokes a runtime entry point and returns its HRESULT.
func call(proc *windows.LazyProc, args ...uintptr) uint32 {
	r1, _, _ := proc.Call(args...)
	return uint32(r1)
}
