package wp

import (
	"strings"
	"testing"
)

func TestBuildPostsQueryDeterministic(t *testing.T) {
	f := PostFilter{Search: "election", Category: "politics"}
	pg := Pagination{After: "cursor9"}

	q1, v1 := buildPostsQuery(f, pg)
	q2, v2 := buildPostsQuery(f, pg)
	if q1 != q2 {
		t.Error("identical inputs must produce identical documents")
	}
	if len(v1) != len(v2) {
		t.Fatalf("variable sets differ: %v vs %v", v1, v2)
	}
	for k, v := range v1 {
		if v2[k] != v {
			t.Errorf("variable %q differs: %v vs %v", k, v, v2[k])
		}
	}
}

func TestBuildPostsQueryOmitsAbsentFilters(t *testing.T) {
	q, vars := buildPostsQuery(PostFilter{}, Pagination{})

	if strings.Contains(q, "where:") {
		t.Error("no filters set, document must carry no where clause")
	}
	if strings.Contains(q, "$search") || strings.Contains(q, "$categorySlug") {
		t.Error("absent filters must not appear as variable definitions")
	}
	for _, k := range []string{"search", "categorySlug", "authorSlug", "tagSlug"} {
		if _, ok := vars[k]; ok {
			t.Errorf("absent filter %q must not be sent as a variable", k)
		}
	}
	if vars["perPage"] != perPage {
		t.Errorf("perPage = %v, want %d", vars["perPage"], perPage)
	}
}

func TestBuildPostsQueryIncludesPresentFilters(t *testing.T) {
	q, vars := buildPostsQuery(PostFilter{Search: "election", Category: "politics"}, Pagination{})

	if !strings.Contains(q, "search: $search") {
		t.Error("search filter missing from where clause")
	}
	if !strings.Contains(q, "categoryName: $categorySlug") {
		t.Error("category filter missing from where clause")
	}
	if vars["search"] != "election" || vars["categorySlug"] != "politics" {
		t.Errorf("unexpected variables: %v", vars)
	}
}

func TestBuildPostsQueryDirection(t *testing.T) {
	q, vars := buildPostsQuery(PostFilter{}, Pagination{})
	if !strings.Contains(q, "first: $perPage, after: $after") {
		t.Error("no cursor must default to forward pagination")
	}
	if _, ok := vars["after"]; ok {
		t.Error("absent cursor must not be sent as a variable")
	}

	q, vars = buildPostsQuery(PostFilter{}, Pagination{After: "cursor3"})
	if !strings.Contains(q, "first: $perPage") || strings.Contains(q, "last:") {
		t.Error("after cursor must select forward pagination")
	}
	if vars["after"] != "cursor3" {
		t.Errorf("after = %v, want cursor3", vars["after"])
	}

	q, vars = buildPostsQuery(PostFilter{}, Pagination{Before: "cursor7"})
	if !strings.Contains(q, "last: $perPage, before: $before") {
		t.Error("before cursor must select backward pagination")
	}
	if strings.Contains(q, "$after") {
		t.Error("backward document must not define the forward cursor")
	}
	if vars["before"] != "cursor7" {
		t.Errorf("before = %v, want cursor7", vars["before"])
	}
}

func TestPaginationValidate(t *testing.T) {
	cases := []struct {
		name    string
		pg      Pagination
		wantErr bool
	}{
		{"neither", Pagination{}, false},
		{"after only", Pagination{After: "cursor1"}, false},
		{"before only", Pagination{Before: "cursor1"}, false},
		{"both", Pagination{After: "cursor1", Before: "cursor2"}, true},
	}
	for _, tc := range cases {
		err := tc.pg.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}
