package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		url  string
		def  int
		want Params
	}{
		{"defaults", "/tasks", 0, Params{Page: 1, PerPage: DefaultPerPage}},
		{"configured default", "/tasks", 10, Params{Page: 1, PerPage: 10}},
		{"explicit", "/tasks?page=2&per_page=5", 0, Params{Page: 2, PerPage: 5}},
		{"invalid page", "/tasks?page=abc", 0, Params{Page: 1, PerPage: DefaultPerPage}},
		{"zero page", "/tasks?page=0&per_page=-1", 0, Params{Page: 1, PerPage: DefaultPerPage}},
		{"capped", "/tasks?per_page=1000", 0, Params{Page: 1, PerPage: MaxPerPage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			if got := Parse(r, tt.def); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestSkipLimit(t *testing.T) {
	p := Params{Page: 3, PerPage: 4}
	if p.Skip() != 8 {
		t.Errorf("Skip() = %d, want 8", p.Skip())
	}
	if p.Limit() != 4 {
		t.Errorf("Limit() = %d, want 4", p.Limit())
	}
}

func TestNewMeta_TotalPages(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 3, 0},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{7, 3, 3},
		{9, 3, 3},
		{10, 5, 2},
	}

	for _, tt := range tests {
		m := NewMeta(Params{Page: 1, PerPage: tt.perPage}, tt.total)
		if m.TotalPages != tt.want {
			t.Errorf("total=%d per_page=%d: TotalPages = %d, want %d", tt.total, tt.perPage, m.TotalPages, tt.want)
		}
		if m.TotalCount != tt.total {
			t.Errorf("TotalCount = %d, want %d", m.TotalCount, tt.total)
		}
	}
}

func TestNewPage_NilItems(t *testing.T) {
	p := NewPage[int](nil, Params{Page: 1, PerPage: 3}, 0)
	if p.Items == nil || len(p.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", p.Items)
	}
}
