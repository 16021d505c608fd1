package pagination

import "testing"

func TestPaginateTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 10, want: 0},
		{total: 21, limit: 10, want: 3},
		{total: 20, limit: 10, want: 2},
		{total: 1, limit: 8, want: 1},
		{total: 5, limit: 0, want: 0},
	}
	for _, tc := range cases {
		got := Paginate(1, tc.limit, tc.total, []string{})
		if got.TotalPages != tc.want {
			t.Fatalf("total=%d limit=%d: expected %d pages, got %d", tc.total, tc.limit, tc.want, got.TotalPages)
		}
	}
}

func TestPaginateNilItemsBecomeEmpty(t *testing.T) {
	p := Paginate[int](2, 10, 0, nil)
	if p.Items == nil || len(p.Items) != 0 {
		t.Fatalf("expected empty non-nil items")
	}
	if p.Page != 2 || p.Limit != 10 {
		t.Fatalf("unexpected page metadata: %+v", p)
	}
}

func TestNormalizeAndOffset(t *testing.T) {
	page, limit := Normalize(0, 0, 8, 100)
	if page != 1 || limit != 8 {
		t.Fatalf("expected defaults 1/8, got %d/%d", page, limit)
	}
	_, limit = Normalize(1, 500, 8, 100)
	if limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", limit)
	}
	if Offset(3, 10) != 20 {
		t.Fatalf("expected offset 20")
	}
	if Offset(0, 10) != 0 {
		t.Fatalf("expected offset 0 for page 0")
	}
}
