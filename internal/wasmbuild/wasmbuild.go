// Package wasmbuild assembles small core wasm modules in binary form.
//
// It exists for tests: guest fixtures (imports, exports, data segments,
// short i64 bodies) are built directly as bytes, including deliberately
// hostile shapes like unknown imports and trapping start routines.
// Only the handful of constructs the fixtures need is supported.
package wasmbuild

import "bytes"

// ValType encodings from the wasm binary format.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

// Section IDs, in required order of appearance.
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionStart    byte = 8
	sectionCode     byte = 10
	sectionData     byte = 11
)

const (
	kindFunc   byte = 0
	kindMemory byte = 2

	funcTypeByte byte = 0x60
	opEnd        byte = 0x0B
)

type funcType struct {
	params  []ValType
	results []ValType
}

type importEntry struct {
	module  string
	name    string
	typeIdx uint32
}

type exportEntry struct {
	name string
	kind byte
	idx  uint32
}

type dataEntry struct {
	offset uint32
	data   []byte
}

// Builder accumulates module contents. Declare imports before local
// functions: function indices count imports first.
type Builder struct {
	types     []funcType
	imports   []importEntry
	funcTypes []uint32
	bodies    [][]byte
	exports   []exportEntry
	data      []dataEntry
	memMin    uint32
	memMax    uint32
	hasMemory bool
	start     *uint32
}

func New() *Builder {
	return &Builder{}
}

// Type registers a function type and returns its index.
func (b *Builder) Type(params, results []ValType) uint32 {
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// ImportFunc declares a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, typeIdx uint32) uint32 {
	b.imports = append(b.imports, importEntry{module: module, name: name, typeIdx: typeIdx})
	return uint32(len(b.imports) - 1)
}

// Func adds a local function with the given body (instructions including
// the trailing end opcode, no locals) and returns its function index.
func (b *Builder) Func(typeIdx uint32, body []byte) uint32 {
	b.funcTypes = append(b.funcTypes, typeIdx)
	b.bodies = append(b.bodies, body)
	return uint32(len(b.imports) + len(b.bodies) - 1)
}

// Memory declares the module's linear memory in 64KiB pages.
func (b *Builder) Memory(minPages, maxPages uint32) {
	b.hasMemory = true
	b.memMin = minPages
	b.memMax = maxPages
}

func (b *Builder) ExportFunc(name string, funcIdx uint32) {
	b.exports = append(b.exports, exportEntry{name: name, kind: kindFunc, idx: funcIdx})
}

func (b *Builder) ExportMemory(name string) {
	b.exports = append(b.exports, exportEntry{name: name, kind: kindMemory, idx: 0})
}

// Data adds an active data segment at the given byte offset.
func (b *Builder) Data(offset uint32, data []byte) {
	b.data = append(b.data, dataEntry{offset: offset, data: data})
}

// Start marks funcIdx as the module's start routine.
func (b *Builder) Start(funcIdx uint32) {
	b.start = &funcIdx
}

// Bytes encodes the module.
func (b *Builder) Bytes() []byte {
	var w bytes.Buffer

	// Magic and version
	w.Write([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00})

	if len(b.types) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.types)))
		for _, ft := range b.types {
			sec.WriteByte(funcTypeByte)
			writeValTypes(&sec, ft.params)
			writeValTypes(&sec, ft.results)
		}
		writeSection(&w, sectionType, sec.Bytes())
	}

	if len(b.imports) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.imports)))
		for _, imp := range b.imports {
			writeName(&sec, imp.module)
			writeName(&sec, imp.name)
			sec.WriteByte(kindFunc)
			writeU32(&sec, imp.typeIdx)
		}
		writeSection(&w, sectionImport, sec.Bytes())
	}

	if len(b.funcTypes) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.funcTypes)))
		for _, typeIdx := range b.funcTypes {
			writeU32(&sec, typeIdx)
		}
		writeSection(&w, sectionFunction, sec.Bytes())
	}

	if b.hasMemory {
		var sec bytes.Buffer
		writeU32(&sec, 1)
		if b.memMax > 0 {
			sec.WriteByte(0x01)
			writeU32(&sec, b.memMin)
			writeU32(&sec, b.memMax)
		} else {
			sec.WriteByte(0x00)
			writeU32(&sec, b.memMin)
		}
		writeSection(&w, sectionMemory, sec.Bytes())
	}

	if len(b.exports) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.exports)))
		for _, exp := range b.exports {
			writeName(&sec, exp.name)
			sec.WriteByte(exp.kind)
			writeU32(&sec, exp.idx)
		}
		writeSection(&w, sectionExport, sec.Bytes())
	}

	if b.start != nil {
		var sec bytes.Buffer
		writeU32(&sec, *b.start)
		writeSection(&w, sectionStart, sec.Bytes())
	}

	if len(b.bodies) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.bodies)))
		for _, body := range b.bodies {
			var entry bytes.Buffer
			writeU32(&entry, 0) // no locals
			entry.Write(body)
			writeU32(&sec, uint32(entry.Len()))
			sec.Write(entry.Bytes())
		}
		writeSection(&w, sectionCode, sec.Bytes())
	}

	if len(b.data) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.data)))
		for _, d := range b.data {
			sec.WriteByte(0x00) // active segment, memory 0
			sec.Write(I32Const(int32(d.offset)))
			sec.WriteByte(opEnd)
			writeU32(&sec, uint32(len(d.data)))
			sec.Write(d.data)
		}
		writeSection(&w, sectionData, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, payload []byte) {
	w.WriteByte(id)
	writeU32(w, uint32(len(payload)))
	w.Write(payload)
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	writeU32(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}

func writeName(w *bytes.Buffer, name string) {
	writeU32(w, uint32(len(name)))
	w.WriteString(name)
}

// writeU32 writes an unsigned LEB128 value.
func writeU32(w *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			w.WriteByte(b | 0x80)
			continue
		}
		w.WriteByte(b)
		return
	}
}

// sleb64 encodes a signed LEB128 value.
func sleb64(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
