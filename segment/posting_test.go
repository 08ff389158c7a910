package segment

import (
	"reflect"
	"testing"

	"github.com/cairnsearch/cairn/trigram"
)

func TestPostingListRoundTrip(t *testing.T) {
	cases := [][]uint32{
		{},
		{0},
		{0, 1, 2, 3},
		{5, 10, 1000, 1000000},
	}
	for _, ids := range cases {
		enc := EncodePostingList(ids)
		got, n := DecodePostingList(enc)
		if n != len(enc) {
			t.Errorf("ids=%v: consumed %d bytes, want %d", ids, n, len(enc))
		}
		if len(ids) == 0 {
			if len(got) != 0 {
				t.Errorf("ids=%v: got %v, want empty", ids, got)
			}
			continue
		}
		if !reflect.DeepEqual(got, ids) {
			t.Errorf("ids=%v: got %v", ids, got)
		}
	}
}

func TestPostingBuilderDedup(t *testing.T) {
	b := PostingBuilder{}
	tri := trigram.Pack('a', 'b', 'c')
	b.Add(tri, 1)
	b.Add(tri, 1)
	b.Add(tri, 2)
	if got := b[tri]; !reflect.DeepEqual(got, []uint32{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
}
