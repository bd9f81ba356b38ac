package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=50&offset=10", 50, 10},
		{"limit capped", "limit=500", MaxLimit, 0},
		{"negative ignored", "limit=-5&offset=-2", DefaultLimit, 0},
		{"garbage ignored", "limit=abc&offset=xyz", DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromContext(contextWithQuery(tt.query))
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want limit=%d offset=%d",
					p.Limit, p.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	resp := NewResponse([]int{1, 2, 3}, 10, 3, 0)
	if !resp.HasMore {
		t.Error("expected has_more with 7 remaining")
	}
	resp = NewResponse([]int{1}, 10, 3, 9)
	if resp.HasMore {
		t.Error("expected has_more=false on the last page")
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got := Paginate(items, Params{Limit: 2, Offset: 0})
	if len(got) != 2 || got[0] != 1 {
		t.Errorf("first page = %v", got)
	}
	got = Paginate(items, Params{Limit: 2, Offset: 4})
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("last page = %v", got)
	}
	got = Paginate(items, Params{Limit: 2, Offset: 10})
	if len(got) != 0 {
		t.Errorf("past-end page = %v", got)
	}
}
