package wasmbuild

import (
	"bytes"
	"testing"
)

func TestEmptyModule(t *testing.T) {
	got := New().Bytes()
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %x, got %x", want, got)
	}
}

// Golden bytes for one exported nullary function returning i64.const 0,
// assembled by hand from the binary format spec.
func TestGoldenSingleFunc(t *testing.T) {
	b := New()
	ft := b.Type(nil, []ValType{I64})
	f := b.Func(ft, Body(I64Const(0)))
	b.ExportFunc("f", f)

	want := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		0x01, 0x05, 0x01, 0x60, 0x00, 0x01, 0x7E, // type: () -> i64
		0x03, 0x02, 0x01, 0x00, // function: 1 func, type 0
		0x07, 0x05, 0x01, 0x01, 0x66, 0x00, 0x00, // export: "f" func 0
		0x0A, 0x06, 0x01, 0x04, 0x00, 0x42, 0x00, 0x0B, // code: i64.const 0, end
	}
	if got := b.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("expected\n%x\ngot\n%x", want, got)
	}
}

func TestFuncIndicesCountImports(t *testing.T) {
	b := New()
	ft := b.Type([]ValType{I64}, []ValType{I64})
	imp := b.ImportFunc("env", "debug", ft)
	local := b.Func(ft, Body(LocalGet(0)))

	if imp != 0 {
		t.Errorf("expected import index 0, got %d", imp)
	}
	if local != 1 {
		t.Errorf("expected local func index 1, got %d", local)
	}
}

func TestSLEB64(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7F}},
		{63, []byte{0x3F}},
		{64, []byte{0xC0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xBF, 0x7F}},
		{int64(42) << 32, []byte{0x80, 0x80, 0x80, 0x80, 0xA0, 0x05}},
	}
	for _, tc := range tests {
		if got := sleb64(tc.v); !bytes.Equal(got, tc.want) {
			t.Errorf("sleb64(%d): expected %x, got %x", tc.v, tc.want, got)
		}
	}
}

func TestULEB128(t *testing.T) {
	var w bytes.Buffer
	writeU32(&w, 624485)
	want := []byte{0xE5, 0x8E, 0x26}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %x, got %x", want, w.Bytes())
	}
}

func TestDataSegmentEncoding(t *testing.T) {
	b := New()
	b.Memory(1, 1)
	b.ExportMemory("memory")
	b.Data(1024, []byte("hi"))

	out := b.Bytes()

	// data section: id 11, size, count 1, flags 0, i32.const 1024, end, len 2, "hi"
	want := []byte{0x0B, 0x09, 0x01, 0x00, 0x41, 0x80, 0x08, 0x0B, 0x02, 'h', 'i'}
	if !bytes.HasSuffix(out, want) {
		t.Errorf("expected data section suffix %x in %x", want, out)
	}
}
