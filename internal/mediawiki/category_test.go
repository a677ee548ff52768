package mediawiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func categoryServer(t *testing.T, batches [][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("list") != "categorymembers" || q.Get("cmtitle") != "Category:2018 films" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		batch := 0
		if c := q.Get("cmcontinue"); c != "" {
			_, _ = fmt.Sscanf(c, "page|%d", &batch)
			if q.Get("continue") != "-||" {
				t.Errorf("expected continue token forwarded, got %q", q.Get("continue"))
			}
		}

		resp := map[string]any{}
		members := []map[string]any{}
		for i, title := range batches[batch] {
			members = append(members, map[string]any{"pageid": batch*100 + i, "ns": 0, "title": title})
		}
		resp["query"] = map[string]any{"categorymembers": members}
		if batch+1 < len(batches) {
			resp["continue"] = map[string]string{
				"cmcontinue": fmt.Sprintf("page|%d", batch+1),
				"continue":   "-||",
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestCategoryMembers_FollowsContinuation(t *testing.T) {
	server := categoryServer(t, [][]string{
		{"A Quiet Place (film)", "Black Panther (film)"},
		{"Roma (2018 film)", "The Favourite"},
		{"Category:2018 animated films", "Category:2018 documentary films"},
	})
	defer server.Close()

	client := newTestClient(server.URL, nil)
	client.config.ExcludeTrailing = 2

	got, err := client.CategoryMembers(context.Background(), "2018 films")
	if err != nil {
		t.Fatalf("CategoryMembers: %v", err)
	}
	want := []string{"A Quiet Place (film)", "Black Panther (film)", "Roma (2018 film)", "The Favourite"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CategoryMembers = %v, want %v", got, want)
	}
}

func TestCategoryMembers_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"error": {"code": "invalidcategory", "info": "The category name you entered is not valid."}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, nil).CategoryMembers(context.Background(), "Category:2018 films")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDropTrailing(t *testing.T) {
	titles := []string{"a", "b", "c"}
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"a", "b", "c"}},
		{1, []string{"a", "b"}},
		{3, []string{}},
		{8, []string{}},
		{-1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := dropTrailing(titles, tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("dropTrailing(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
