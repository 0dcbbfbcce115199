//go:build windows

package msmq

import (
	"bytes"
	"context"
	"encoding/hex"
	"runtime"
	"sort"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"

	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

const (
	correlationSize = 20
	messageIDSize   = 20
	initialBodySize = 8192
	formatNameChars = 256
)

// Backend reaches the platform queue runtime in-process through mqrt.dll.
type Backend struct {
	host       string
	probeQueue string
}

var _ transport.Backend = (*Backend)(nil)

// New returns the native backend. host is the queue manager machine ("."
// for local); probeQueue is the well-known queue the reachability probe
// opens.
func New(host, probeQueue string) *Backend {
	if probeQueue == "" {
		probeQueue = "quegate-probe"
	}
	return &Backend{host: host, probeQueue: probeQueue}
}

func (b *Backend) Open(ctx context.Context) error {
	if err := runtimeAvailable(); err != nil {
		return qerrors.Connection(qerrors.CodeUnreachable, "queue runtime not loadable", err)
	}
	return nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) Kind() transport.Kind { return transport.KindNative }

// Probe runs the three-step reachability check against the runtime.
func (b *Backend) Probe(ctx context.Context) error {
	// Step 1: the runtime itself.
	if err := b.Open(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Step 2: open the well-known probe queue. Any answer from a live
	// service counts, including access-denied and not-found.
	p, err := transport.ParsePathname(b.probeQueue)
	if err != nil {
		return err
	}
	fn, hr := b.lookupFormatName(p)
	if hr == MQ_ERROR_QUEUE_NOT_FOUND {
		// Resolution itself proved the local queue manager answered.
		log.Debug().Str("queue", p.Canonical).Msg("Probe queue absent, service answered")
	} else if !succeeded(hr) {
		if !reachable(hr) {
			return mapHRESULT(hr).WithOp("probe").WithQueue(p.Canonical)
		}
	} else {
		h, openHR := b.open(fn, MQ_PEEK_ACCESS, MQ_DENY_NONE)
		if succeeded(openHR) {
			b.closeHandle(h)
		} else if !reachable(openHR) {
			return mapHRESULT(openHR).WithOp("probe").WithQueue(p.Canonical)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Step 3: full create/delete round trip on a throwaway queue.
	tempName := b.probeQueue + "-" + uuid.NewString()[:8]
	if err := b.CreateQueue(ctx, tempName, transport.CreateOptions{Label: "reachability probe"}); err != nil {
		return qerrors.Connection(qerrors.CodeUnreachable, "probe create failed", err)
	}
	if err := b.DeleteQueue(ctx, tempName); err != nil {
		return qerrors.Connection(qerrors.CodeUnreachable, "probe delete failed", err)
	}
	return nil
}

func (b *Backend) CreateQueue(ctx context.Context, name string, opts transport.CreateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	if _, lookup := formatNameFor(p); !lookup {
		return qerrors.Validation(qerrors.CodeInvalidName,
			"queues are created by pathname, not format name").WithQueue(p.Canonical)
	}

	bag := newPropBag()
	if _, err := bag.addString(PROPID_Q_PATHNAME, p.Canonical); err != nil {
		return qerrors.Validation(qerrors.CodeInvalidName, err.Error())
	}
	if opts.Label != "" {
		if _, err := bag.addString(PROPID_Q_LABEL, opts.Label); err != nil {
			return qerrors.Validation(qerrors.CodeInvalidName, err.Error())
		}
	}
	if opts.MaxSizeKB > 0 {
		bag.addU4(PROPID_Q_QUOTA, uint32(opts.MaxSizeKB))
	}
	if opts.Journal {
		bag.addU1(PROPID_Q_JOURNAL, MQ_JOURNAL)
	}
	if opts.Transactional {
		bag.addU1(PROPID_Q_TRANSACTION, MQ_TRANSACTIONAL)
	}

	fnBuf := make([]uint16, formatNameChars)
	fnLen := uint32(len(fnBuf))
	hr := call(procMQCreateQueue,
		0,
		uintptr(unsafe.Pointer(bag.build())),
		uintptr(unsafe.Pointer(&fnBuf[0])),
		uintptr(unsafe.Pointer(&fnLen)),
	)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		return mapHRESULT(hr).WithOp("create_queue").WithQueue(p.Canonical)
	}
	log.Debug().Str("queue", p.Canonical).Msg("Created queue")
	return nil
}

func (b *Backend) DeleteQueue(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		return qerr.WithOp("delete_queue")
	}
	fnPtr, err := windows.UTF16PtrFromString(fn)
	if err != nil {
		return qerrors.Validation(qerrors.CodeInvalidName, err.Error())
	}
	if hr := call(procMQDeleteQueue, uintptr(unsafe.Pointer(fnPtr))); !succeeded(hr) {
		return mapHRESULT(hr).WithOp("delete_queue").WithQueue(p.Canonical)
	}
	log.Debug().Str("queue", p.Canonical).Msg("Deleted queue")
	return nil
}

func (b *Backend) QueueExists(ctx context.Context, name string) (bool, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return false, err
	}

	if fn, lookup := formatNameFor(p); !lookup {
		// Direct grammars skip the directory: probe-open and judge by
		// the answer.
		h, hr := b.open(fn, MQ_PEEK_ACCESS, MQ_DENY_NONE)
		if succeeded(hr) {
			b.closeHandle(h)
			return true, nil
		}
		switch hr {
		case MQ_ERROR_QUEUE_NOT_FOUND, MQ_ERROR_QUEUE_NOT_ACTIVE:
			return false, nil
		case MQ_ERROR_ACCESS_DENIED, MQ_ERROR_SHARING_VIOLATION:
			return true, nil
		default:
			return false, mapHRESULT(hr).WithOp("queue_exists").WithQueue(p.Canonical)
		}
	}

	fn, hr := b.lookupFormatName(p)
	if hr == MQ_ERROR_QUEUE_NOT_FOUND {
		return false, nil
	}
	if !succeeded(hr) {
		return false, mapHRESULT(hr).WithOp("queue_exists").WithQueue(p.Canonical)
	}
	bag := newPropBag()
	bag.addNull(PROPID_Q_QUOTA)
	fnPtr, err := windows.UTF16PtrFromString(fn)
	if err != nil {
		return false, qerrors.Validation(qerrors.CodeInvalidName, err.Error())
	}
	hr = call(procMQGetQueueProperties,
		uintptr(unsafe.Pointer(fnPtr)),
		uintptr(unsafe.Pointer(bag.build())),
	)
	runtime.KeepAlive(bag)
	if hr == MQ_ERROR_QUEUE_NOT_FOUND {
		return false, nil
	}
	if !succeeded(hr) {
		return false, mapHRESULT(hr).WithOp("queue_exists").WithQueue(p.Canonical)
	}
	return true, nil
}

// Send enqueues one message. A missing destination addressed by pathname is
// created first; format-name and direct grammars cannot auto-create.
func (b *Backend) Send(ctx context.Context, opts transport.SendOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}

	h, qerr := b.openParsed(p, MQ_SEND_ACCESS, MQ_DENY_NONE)
	if qerr != nil && qerr.Code == qerrors.CodeQueueNotFound {
		if _, lookup := formatNameFor(p); lookup {
			if cerr := b.CreateQueue(ctx, p.Canonical, transport.CreateOptions{}); cerr != nil &&
				qerrors.CodeOf(cerr) != qerrors.CodeQueueExists {
				return nil, cerr
			}
			h, qerr = b.openParsed(p, MQ_SEND_ACCESS, MQ_DENY_NONE)
		}
	}
	if qerr != nil {
		return nil, qerr.WithOp("send")
	}
	defer b.closeHandle(h)

	priority := transport.EffectivePriority(opts.Priority)
	bag := newPropBag()
	bag.addBytes(PROPID_M_BODY, opts.Body)
	bag.addU1(PROPID_M_PRIORITY, byte(priority))
	msgIDIdx := bag.addByteBuffer(PROPID_M_MSGID, messageIDSize)
	if opts.Label != "" {
		if _, err := bag.addString(PROPID_M_LABEL, opts.Label); err != nil {
			return nil, qerrors.Validation(qerrors.CodeInvalidName, err.Error())
		}
	}
	if opts.CorrelationID != "" {
		bag.addBytes(PROPID_M_CORRELATIONID, correlationBytes(opts.CorrelationID))
	}

	hr := call(procMQSendMessage, h, uintptr(unsafe.Pointer(bag.build())), 0)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		return nil, mapHRESULT(hr).WithOp("send").WithQueue(p.Canonical)
	}

	msg := &transport.Message{
		ID:            hex.EncodeToString(bag.bytesAt(msgIDIdx, messageIDSize)),
		Queue:         p.Canonical,
		Body:          append([]byte(nil), opts.Body...),
		Label:         opts.Label,
		Priority:      priority,
		CorrelationID: opts.CorrelationID,
		Status:        transport.StatusSent,
		SentAt:        time.Now(),
	}
	log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Int("priority", priority).Msg("Sent message")
	return msg, nil
}

// Receive dequeues (or peeks) the front message, waiting up to the timeout.
// An empty queue after the timeout returns (nil, nil).
func (b *Backend) Receive(ctx context.Context, opts transport.ReceiveOptions) (*transport.Message, error) {
	p, err := transport.ParsePathname(opts.Queue)
	if err != nil {
		return nil, err
	}

	access := uint32(MQ_RECEIVE_ACCESS)
	action := uint32(MQ_ACTION_RECEIVE)
	if opts.Peek {
		access = MQ_PEEK_ACCESS
		action = MQ_ACTION_PEEK_CURRENT
	}
	h, qerr := b.openParsed(p, access, MQ_DENY_NONE)
	if qerr != nil {
		return nil, qerr.WithOp("receive")
	}
	defer b.closeHandle(h)

	timeout := uint32(0)
	if opts.Timeout > 0 {
		timeout = uint32(opts.Timeout.Milliseconds())
	}

	bag := newPropBag()
	bodyIdx := bag.addByteBuffer(PROPID_M_BODY, initialBodySize)
	bodySizeIdx := bag.addU4(PROPID_M_BODY_SIZE, 0)
	labelLenIdx := bag.addU4(PROPID_M_LABEL_LEN, transport.MaxLabelChars+1)
	labelIdx := bag.addStringBuffer(PROPID_M_LABEL, transport.MaxLabelChars+1)
	priorityIdx := bag.addU1(PROPID_M_PRIORITY, 0)
	msgIDIdx := bag.addByteBuffer(PROPID_M_MSGID, messageIDSize)
	correlIdx := bag.addByteBuffer(PROPID_M_CORRELATIONID, correlationSize)

	hr := b.receiveCall(h, timeout, action, bag)
	if hr == MQ_ERROR_BUFFER_OVERFLOW {
		// Body larger than the initial buffer: grow to the reported
		// size and take the message on the second call.
		bag.setByteBuffer(bodyIdx, int(bag.u4(bodySizeIdx)))
		bag.setU4(labelLenIdx, transport.MaxLabelChars+1)
		hr = b.receiveCall(h, timeout, action, bag)
	}
	if hr == MQ_ERROR_IO_TIMEOUT {
		return nil, nil
	}
	if !succeeded(hr) {
		return nil, mapHRESULT(hr).WithOp("receive").WithQueue(p.Canonical)
	}

	msg := &transport.Message{
		ID:            hex.EncodeToString(bag.bytesAt(msgIDIdx, messageIDSize)),
		Queue:         p.Canonical,
		Body:          bag.bytesAt(bodyIdx, int(bag.u4(bodySizeIdx))),
		Label:         bag.stringAt(labelIdx),
		Priority:      int(bag.u1(priorityIdx)),
		CorrelationID: correlationString(bag.bytesAt(correlIdx, correlationSize)),
		Status:        transport.StatusQueued,
	}
	if !opts.Peek {
		msg.Status = transport.StatusReceived
		msg.ReceivedAt = time.Now()
	}
	log.Debug().Str("queue", p.Canonical).Str("id", msg.ID).Bool("peek", opts.Peek).Msg("Received message")
	return msg, nil
}

func (b *Backend) receiveCall(h uintptr, timeout, action uint32, bag *propBag) uint32 {
	hr := call(procMQReceiveMessage,
		h,
		uintptr(timeout),
		uintptr(action),
		uintptr(unsafe.Pointer(bag.build())),
		0, // overlapped
		0, // callback
		0, // cursor
		0, // transaction
	)
	runtime.KeepAlive(bag)
	return hr
}

func (b *Backend) Purge(ctx context.Context, name string) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	h, qerr := b.openParsed(p, MQ_RECEIVE_ACCESS, MQ_DENY_NONE)
	if qerr != nil {
		return qerr.WithOp("purge")
	}
	defer b.closeHandle(h)
	if hr := call(procMQPurgeQueue, h); !succeeded(hr) {
		return mapHRESULT(hr).WithOp("purge").WithQueue(p.Canonical)
	}
	log.Debug().Str("queue", p.Canonical).Msg("Purged queue")
	return nil
}

func (b *Backend) MessageCount(ctx context.Context, name string) (int64, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return 0, err
	}
	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		return 0, qerr.WithOp("message_count")
	}
	count, _, hr := b.mgmtQueueCounters(p, fn)
	if hr == MQ_ERROR_QUEUE_NOT_ACTIVE {
		// Exists but has had no activity since the service started.
		return 0, nil
	}
	if !succeeded(hr) {
		return 0, mapHRESULT(hr).WithOp("message_count").WithQueue(p.Canonical)
	}
	return count, nil
}

func (b *Backend) UpdateQueue(ctx context.Context, name string, opts transport.UpdateOptions) error {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return err
	}
	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		return qerr.WithOp("update_queue")
	}

	bag := newPropBag()
	if opts.Label != nil {
		if _, err := bag.addString(PROPID_Q_LABEL, *opts.Label); err != nil {
			return qerrors.Validation(qerrors.CodeInvalidName, err.Error())
		}
	}
	if opts.MaxSizeKB != nil {
		bag.addU4(PROPID_Q_QUOTA, uint32(*opts.MaxSizeKB))
	}
	if opts.Journal != nil {
		flag := byte(MQ_JOURNAL_NONE)
		if *opts.Journal {
			flag = MQ_JOURNAL
		}
		bag.addU1(PROPID_Q_JOURNAL, flag)
	}
	if len(bag.ids) == 0 {
		return nil
	}

	fnPtr, err := windows.UTF16PtrFromString(fn)
	if err != nil {
		return qerrors.Validation(qerrors.CodeInvalidName, err.Error())
	}
	hr := call(procMQSetQueueProperties,
		uintptr(unsafe.Pointer(fnPtr)),
		uintptr(unsafe.Pointer(bag.build())),
	)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		return mapHRESULT(hr).WithOp("update_queue").WithQueue(p.Canonical)
	}
	log.Debug().Str("queue", p.Canonical).Msg("Updated queue properties")
	return nil
}

// ListQueues enumerates the private queues of the configured machine through
// the management API. Public queues addressed by other machines are not
// discovered on this path.
func (b *Backend) ListQueues(ctx context.Context) ([]transport.QueueInfo, error) {
	bag := newPropBag()
	idx := bag.addNull(PROPID_MGMT_MSMQ_PRIVATEQ)

	objPtr, err := windows.UTF16PtrFromString("MACHINE")
	if err != nil {
		return nil, qerrors.System(qerrors.CodeInternal, "object name encoding", err)
	}
	hr := call(procMQMgmtGetInfo,
		uintptr(unsafe.Pointer(b.machineArg())),
		uintptr(unsafe.Pointer(objPtr)),
		uintptr(unsafe.Pointer(bag.build())),
	)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		return nil, mapHRESULT(hr).WithOp("list_queues")
	}

	paths := bag.freeVector(idx)
	infos := make([]transport.QueueInfo, 0, len(paths))
	for _, path := range paths {
		p, err := transport.ParsePathname(path)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("Skipping unparseable queue pathname")
			continue
		}
		infos = append(infos, b.queueInfo(p))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (b *Backend) Stats(ctx context.Context, name string) (transport.QueueStats, error) {
	p, err := transport.ParsePathname(name)
	if err != nil {
		return transport.QueueStats{}, err
	}
	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		return transport.QueueStats{}, qerr.WithOp("stats")
	}
	count, bytesInQueue, hr := b.mgmtQueueCounters(p, fn)
	if hr == MQ_ERROR_QUEUE_NOT_ACTIVE {
		return transport.QueueStats{Queue: p.Canonical}, nil
	}
	if !succeeded(hr) {
		return transport.QueueStats{}, mapHRESULT(hr).WithOp("stats").WithQueue(p.Canonical)
	}
	return transport.QueueStats{
		Queue:        p.Canonical,
		MessageCount: count,
		BytesInQueue: bytesInQueue,
	}, nil
}

// queueInfo collects descriptor properties for one queue, degrading to
// status ERROR when the runtime refuses.
func (b *Backend) queueInfo(p *transport.Pathname) transport.QueueInfo {
	info := transport.QueueInfo{
		Name:   p.Queue,
		Path:   p.Canonical,
		Status: transport.QueueActive,
	}

	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		info.Status = transport.QueueError
		return info
	}

	bag := newPropBag()
	labelIdx := bag.addNull(PROPID_Q_LABEL)
	quotaIdx := bag.addNull(PROPID_Q_QUOTA)
	journalIdx := bag.addNull(PROPID_Q_JOURNAL)
	txIdx := bag.addNull(PROPID_Q_TRANSACTION)
	createdIdx := bag.addNull(PROPID_Q_CREATE_TIME)
	modifiedIdx := bag.addNull(PROPID_Q_MODIFY_TIME)

	fnPtr, err := windows.UTF16PtrFromString(fn)
	if err != nil {
		info.Status = transport.QueueError
		return info
	}
	hr := call(procMQGetQueueProperties,
		uintptr(unsafe.Pointer(fnPtr)),
		uintptr(unsafe.Pointer(bag.build())),
	)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		info.Status = transport.QueueError
		return info
	}

	info.Label = bag.freeString(labelIdx)
	info.MaxSizeKB = int64(bag.u4(quotaIdx))
	info.Journal = bag.u1(journalIdx) == MQ_JOURNAL
	info.Transactional = bag.u1(txIdx) == MQ_TRANSACTIONAL
	if sec := bag.i4(createdIdx); sec > 0 {
		info.CreatedAt = time.Unix(int64(sec), 0)
	}
	if sec := bag.i4(modifiedIdx); sec > 0 {
		info.UpdatedAt = time.Unix(int64(sec), 0)
	}

	count, _, hr := b.mgmtQueueCounters(p, fn)
	switch {
	case succeeded(hr):
		info.MessageCount = count
	case hr == MQ_ERROR_QUEUE_NOT_ACTIVE:
		info.Status = transport.QueueInactive
	default:
		info.Status = transport.QueueError
	}
	return info
}

// mgmtQueueCounters asks the management API for the live depth counters of
// one queue.
func (b *Backend) mgmtQueueCounters(p *transport.Pathname, formatName string) (count, bytesInQueue int64, hr uint32) {
	bag := newPropBag()
	countIdx := bag.addNull(PROPID_MGMT_QUEUE_MESSAGE_COUNT)
	bytesIdx := bag.addNull(PROPID_MGMT_QUEUE_BYTES_IN_QUEUE)

	objPtr, err := windows.UTF16PtrFromString("QUEUE=" + formatName)
	if err != nil {
		return 0, 0, MQ_ERROR_ILLEGAL_FORMATNAME
	}
	hr = call(procMQMgmtGetInfo,
		uintptr(unsafe.Pointer(b.machineArg())),
		uintptr(unsafe.Pointer(objPtr)),
		uintptr(unsafe.Pointer(bag.build())),
	)
	runtime.KeepAlive(bag)
	if !succeeded(hr) {
		return 0, 0, hr
	}
	return int64(bag.u4(countIdx)), int64(bag.u4(bytesIdx)), hr
}

// machineArg is the machine-name argument for management calls: nil for the
// local machine.
func (b *Backend) machineArg() *uint16 {
	if b.host == "" || b.host == "." {
		return nil
	}
	ptr, err := windows.UTF16PtrFromString(b.host)
	if err != nil {
		return nil
	}
	return ptr
}

// openParsed opens a queue for the given access, resolving the pathname to a
// format name first.
func (b *Backend) openParsed(p *transport.Pathname, access, share uint32) (uintptr, *qerrors.Error) {
	fn, qerr := b.resolveFormatName(p)
	if qerr != nil {
		return 0, qerr
	}
	h, hr := b.open(fn, access, share)
	if !succeeded(hr) {
		return 0, mapHRESULT(hr).WithQueue(p.Canonical)
	}
	return h, nil
}

func (b *Backend) open(formatName string, access, share uint32) (uintptr, uint32) {
	fnPtr, err := windows.UTF16PtrFromString(formatName)
	if err != nil {
		return 0, MQ_ERROR_ILLEGAL_FORMATNAME
	}
	var h uintptr
	hr := call(procMQOpenQueue,
		uintptr(unsafe.Pointer(fnPtr)),
		uintptr(access),
		uintptr(share),
		uintptr(unsafe.Pointer(&h)),
	)
	return h, hr
}

func (b *Backend) closeHandle(h uintptr) {
	if h != 0 {
		call(procMQCloseQueue, h)
	}
}

// resolveFormatName maps a parsed pathname to the format name the open and
// management calls want.
func (b *Backend) resolveFormatName(p *transport.Pathname) (string, *qerrors.Error) {
	fn, hr := b.lookupFormatName(p)
	if !succeeded(hr) {
		return "", mapHRESULT(hr).WithQueue(p.Canonical)
	}
	return fn, nil
}

// lookupFormatName returns the format name and the raw runtime result, so
// existence checks can tell "no such queue" apart from harder failures.
func (b *Backend) lookupFormatName(p *transport.Pathname) (string, uint32) {
	if fn, lookup := formatNameFor(p); !lookup {
		return fn, MQ_OK
	}
	pathPtr, err := windows.UTF16PtrFromString(p.Canonical)
	if err != nil {
		return "", MQ_ERROR_ILLEGAL_QUEUE_PATHNAME
	}
	buf := make([]uint16, formatNameChars)
	n := uint32(len(buf))
	hr := call(procMQPathNameToFormatName,
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&n)),
	)
	if !succeeded(hr) {
		return "", hr
	}
	return windows.UTF16ToString(buf), MQ_OK
}

func correlationBytes(s string) []byte {
	buf := make([]byte, correlationSize)
	copy(buf, s)
	return buf
}

func correlationString(buf []byte) string {
	return string(bytes.TrimRight(buf, "\x00"))
}
