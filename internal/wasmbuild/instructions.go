package wasmbuild

// Instruction helpers. Each returns the encoded bytes of one instruction;
// Body concatenates them and appends the end opcode.

const (
	opUnreachable byte = 0x00
	opCall        byte = 0x10
	opDrop        byte = 0x1A
	opLocalGet    byte = 0x20
	opI32Const    byte = 0x41
	opI64Const    byte = 0x42
)

func Body(instrs ...[]byte) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, in...)
	}
	return append(out, opEnd)
}

func Unreachable() []byte {
	return []byte{opUnreachable}
}

func Drop() []byte {
	return []byte{opDrop}
}

func LocalGet(index uint32) []byte {
	return appendU32([]byte{opLocalGet}, index)
}

func Call(funcIdx uint32) []byte {
	return appendU32([]byte{opCall}, funcIdx)
}

func I32Const(v int32) []byte {
	return append([]byte{opI32Const}, sleb64(int64(v))...)
}

func I64Const(v int64) []byte {
	return append([]byte{opI64Const}, sleb64(v)...)
}

// LoopForever is an empty infinite loop: loop { br 0 }.
func LoopForever() []byte {
	return []byte{0x03, 0x40, 0x0C, 0x00, 0x0B}
}

func appendU32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
