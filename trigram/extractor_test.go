package trigram

import (
	"bytes"
	"strings"
	"testing"
)

func triOf(s string) Trigram {
	return Pack(s[0], s[1], s[2])
}

func TestExtractBasic(t *testing.T) {
	set, err := Extract([]byte("abcdef"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"abc", "bcd", "cde", "def"}
	if len(set) != len(want) {
		t.Fatalf("got %d trigrams, want %d", len(set), len(want))
	}
	for _, w := range want {
		if _, ok := set[triOf(w)]; !ok {
			t.Errorf("missing trigram %q", w)
		}
	}
}

func TestExtractShortInput(t *testing.T) {
	set, err := Extract([]byte("ab"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("Extract(\"ab\") = %v, want empty", set)
	}
}

func TestExtractContainsNUL(t *testing.T) {
	_, err := Extract([]byte("ab\x00cd"))
	if err != ErrContainsNUL {
		t.Errorf("Extract(NUL) err = %v, want ErrContainsNUL", err)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := Extract([]byte{0x80, 'a', 'b'})
	if err != ErrInvalidUTF8 {
		t.Errorf("leading continuation byte: err = %v, want ErrInvalidUTF8", err)
	}

	_, err = Extract([]byte{'a', 0xC0, 'b'}) // lead byte followed by a non-continuation byte
	if err != ErrInvalidUTF8 {
		t.Errorf("bad continuation: err = %v, want ErrInvalidUTF8", err)
	}
}

func TestExtractLineTooLong(t *testing.T) {
	long := strings.Repeat("a", MaxLineLen+1)
	_, err := Extract([]byte(long))
	if err != ErrLineTooLong {
		t.Errorf("err = %v, want ErrLineTooLong", err)
	}

	ok := strings.Repeat("a", MaxLineLen) + "\nrest"
	if _, err := Extract([]byte(ok)); err != nil {
		t.Errorf("line exactly at limit: err = %v, want nil", err)
	}
}

func TestExtractTooManyTrigrams(t *testing.T) {
	var b bytes.Buffer
	for i := 0; i < MaxTrigrams+100; i++ {
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(byte('A' + (i/26)%26))
		b.WriteByte(byte('0' + (i/26/26)%10))
		if i%100 == 99 {
			// Keep every line under MaxLineLen so the trigram budget,
			// not the line limit, is what rejects the document.
			b.WriteByte('\n')
		}
	}
	_, err := Extract(b.Bytes())
	if err != ErrTooManyTrigrams {
		t.Errorf("err = %v, want ErrTooManyTrigrams", err)
	}
}

func TestExtractPositionsRuneOffsets(t *testing.T) {
	// "café" has 4 runes; é is 2 bytes (0xC3 0xA9).
	content := "café!"
	positions, err := ExtractPositions([]byte(content))
	if err != nil {
		t.Fatalf("ExtractPositions: %v", err)
	}
	caf := triOf("caf")
	pos, ok := positions[caf]
	if !ok || len(pos) != 1 {
		t.Fatalf("positions[caf] = %v", pos)
	}
	if pos[0].ByteOffset != 0 || pos[0].RuneOffset != 0 {
		t.Errorf("caf position = %+v, want byte=0 rune=0", pos[0])
	}

	// trigram starting at the 'é' lead byte (rune index 3): bytes
	// [0xC3, 0xA9, '!'] at byte offset 3.
	tail := Pack(content[3], content[4], content[5])
	pos, ok = positions[tail]
	if !ok || len(pos) != 1 {
		t.Fatalf("positions[tail] = %v", pos)
	}
	if pos[0].ByteOffset != 3 || pos[0].RuneOffset != 3 {
		t.Errorf("tail position = %+v, want byte=3 rune=3", pos[0])
	}
}
