package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/audit", 1},
		{"/audit?page=3", 3},
		{"/audit?page=0", 1},
		{"/audit?page=-2", 1},
		{"/audit?page=abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			p := Parse(httptest.NewRequest("GET", tt.target, nil), 0)
			if p.Number != tt.want {
				t.Errorf("Parse(%q).Number = %d, want %d", tt.target, p.Number, tt.want)
			}
			if p.Size != PageSize {
				t.Errorf("Size = %d, want default %d", p.Size, PageSize)
			}
		})
	}
}

func TestPage_OffsetAndLimit(t *testing.T) {
	p := Page{Number: 3, Size: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
	if got := p.Limit(); got != 20 {
		t.Errorf("Limit() = %d, want 20", got)
	}
}

func TestPage_TotalPages(t *testing.T) {
	p := Page{Number: 1, Size: 50}
	cases := map[int64]int{0: 1, 1: 1, 50: 1, 51: 2, 100: 2, 101: 3}
	for total, want := range cases {
		if got := p.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}
