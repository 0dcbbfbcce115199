//go:build windows

package msmq

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// propVariant matches MQPROPVARIANT on windows/amd64: a 16-bit type tag,
// three reserved words, then a 16-byte union. Scalars and single
// pointers occupy V1; vector types put the element count in V1 and the
// element pointer in V2.
type propVariant struct {
	VT uint16
	_  [3]uint16
	V1 uint64
	V2 uint64
}

// mqProps matches MQMSGPROPS, MQQUEUEPROPS and MQMGMTPROPS, which share one
// layout: a count, a property-id array, a variant array, and an optional
// per-property status array.
type mqProps struct {
	cProp    uint32
	_        uint32
	aPropID  *uint32
	aPropVar *propVariant
	aStatus  *uint32
}

// propBag assembles a property array for one runtime call and keeps the
// backing buffers alive until the call returns. Properties are addressed by
// the index their add method returned.
type propBag struct {
	ids   []uint32
	vars  []propVariant
	words map[int][]uint16
	bytes map[int][]byte
}

func newPropBag() *propBag {
	return &propBag{
		words: make(map[int][]uint16),
		bytes: make(map[int][]byte),
	}
}

func (b *propBag) add(id uint32, v propVariant) int {
	b.ids = append(b.ids, id)
	b.vars = append(b.vars, v)
	return len(b.vars) - 1
}

func (b *propBag) addU1(id uint32, v byte) int {
	return b.add(id, propVariant{VT: VT_UI1, V1: uint64(v)})
}

func (b *propBag) addU4(id uint32, v uint32) int {
	return b.add(id, propVariant{VT: VT_UI4, V1: uint64(v)})
}

// addNull asks the runtime to fill the property and allocate any memory it
// needs. Vector results handed back this way must be released with
// MQFreeMemory.
func (b *propBag) addNull(id uint32) int {
	return b.add(id, propVariant{VT: VT_NULL})
}

// addString attaches a NUL-terminated UTF-16 copy of s as VT_LPWSTR.
func (b *propBag) addString(id uint32, s string) (int, error) {
	w, err := windows.UTF16FromString(s)
	if err != nil {
		return 0, err
	}
	i := b.add(id, propVariant{VT: VT_LPWSTR, V1: uint64(uintptr(unsafe.Pointer(&w[0])))})
	b.words[i] = w
	return i, nil
}

// addStringBuffer attaches an empty UTF-16 buffer the runtime writes into
// (receive-side labels).
func (b *propBag) addStringBuffer(id uint32, chars int) int {
	w := make([]uint16, chars)
	i := b.add(id, propVariant{VT: VT_LPWSTR, V1: uint64(uintptr(unsafe.Pointer(&w[0])))})
	b.words[i] = w
	return i
}

// addBytes attaches data as a VT_UI1 vector (send-side body, correlation id).
func (b *propBag) addBytes(id uint32, data []byte) int {
	v := propVariant{VT: VT_UI1 | VT_VECTOR, V1: uint64(uint32(len(data)))}
	if len(data) > 0 {
		v.V2 = uint64(uintptr(unsafe.Pointer(&data[0])))
	}
	i := b.add(id, v)
	b.bytes[i] = data
	return i
}

// addByteBuffer attaches an empty byte vector the runtime writes into
// (receive-side body, message id).
func (b *propBag) addByteBuffer(id uint32, size int) int {
	return b.addBytes(id, make([]byte, size))
}

// build produces the property struct passed to the runtime. No properties
// may be added afterwards.
func (b *propBag) build() *mqProps {
	p := &mqProps{cProp: uint32(len(b.ids))}
	if len(b.ids) > 0 {
		p.aPropID = &b.ids[0]
		p.aPropVar = &b.vars[0]
	}
	return p
}

func (b *propBag) u1(i int) byte   { return byte(b.vars[i].V1) }
func (b *propBag) u4(i int) uint32 { return uint32(b.vars[i].V1) }
func (b *propBag) i4(i int) int32  { return int32(uint32(b.vars[i].V1)) }

func (b *propBag) setU4(i int, v uint32) { b.vars[i].V1 = uint64(v) }

// setByteBuffer swaps the backing buffer of a byte-vector property, used to
// grow the body buffer after MQ_ERROR_BUFFER_OVERFLOW.
func (b *propBag) setByteBuffer(i, size int) {
	data := make([]byte, size)
	b.vars[i].V1 = uint64(uint32(size))
	b.vars[i].V2 = uint64(uintptr(unsafe.Pointer(&data[0])))
	b.bytes[i] = data
}

// stringAt decodes a UTF-16 buffer property up to its terminator.
func (b *propBag) stringAt(i int) string {
	return windows.UTF16ToString(b.words[i])
}

// bytesAt copies the first n bytes of a byte-vector property.
func (b *propBag) bytesAt(i, n int) []byte {
	buf := b.bytes[i]
	if n > len(buf) {
		n = len(buf)
	}
	return append([]byte(nil), buf[:n]...)
}

// freeString releases a runtime-allocated string property (VT_NULL result)
// and returns its contents.
func (b *propBag) freeString(i int) string {
	ptr := uintptr(b.vars[i].V1)
	if ptr == 0 {
		return ""
	}
	s := windows.UTF16PtrToString((*uint16)(unsafe.Pointer(ptr)))
	call(procMQFreeMemory, ptr)
	return s
}

// freeVector releases a runtime-allocated string vector (VT_NULL results)
// and returns its contents.
func (b *propBag) freeVector(i int) []string {
	count := uint32(b.vars[i].V1)
	ptr := uintptr(b.vars[i].V2)
	if count == 0 || ptr == 0 {
		return nil
	}
	elems := unsafe.Slice((**uint16)(unsafe.Pointer(ptr)), count)
	out := make([]string, 0, count)
	for _, p := range elems {
		if p == nil {
			continue
		}
		out = append(out, windows.UTF16PtrToString(p))
		call(procMQFreeMemory, uintptr(unsafe.Pointer(p)))
	}
	call(procMQFreeMemory, ptr)
	return out
}
