package fundval

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractTicker(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{"City of London Investment Trust (LSE:CTY)", "LSE:CTY"},
		{"Apple Inc (NASDAQ:AAPL) ", "NASDAQ:AAPL"},
		{"BP (LSE:BP.)", "LSE:BP."},
		{"Jupiter Asian Income Class I", ""},
		{"(LSE:CTY) City of London", ""}, // the code must end the name
	}
	for _, tc := range testCases {
		if got := ExtractTicker(tc.name); got != tc.want {
			t.Errorf("ExtractTicker(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestQuoteFeed_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "LSE:CTY":
			fmt.Fprint(w, `{"quote": {"last": 432.5}}`)
		case "LSE:STR":
			// quoted as a string with a continental decimal comma
			fmt.Fprint(w, `{"quote": {"last": "56,19"}}`)
		case "LSE:BAD":
			fmt.Fprint(w, `{"quote": {"last": 0}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	qf := NewQuoteFeed(srv.URL+"?q=%s", "$.quote.last")
	funds := []Fund{
		{ID: 1, Name: "City of London Investment Trust (LSE:CTY)"},
		{ID: 2, Name: "String Price Fund (LSE:STR)"},
		{ID: 3, Name: "Zero Quote Fund (LSE:BAD)"},
		{ID: 4, Name: "No Ticker Fund"},
	}

	quotes, fetched, err := qf.Fetch(funds)
	if err != nil {
		t.Fatalf("Fetch() unexpected error = %v", err)
	}
	if fetched == 0 {
		t.Error("Fetch() fetched time = 0")
	}

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2: %v", len(quotes), quotes)
	}
	if quotes[1] != 432.5 {
		t.Errorf("quote for fund 1 = %v, want 432.5", quotes[1])
	}
	if quotes[2] != 56.19 {
		t.Errorf("quote for fund 2 = %v, want 56.19", quotes[2])
	}
	if _, ok := quotes[3]; ok {
		t.Error("zero quote accepted, want skipped")
	}
}

func TestQuoteFeed_Cached(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"quote": {"last": 432.5}}`)
	}))
	defer srv.Close()

	qf := NewQuoteFeed(srv.URL+"?q=%s", "$.quote.last").Cached()
	funds := []Fund{{ID: 1, Name: "City of London Investment Trust (LSE:CTY)"}}

	for i := 0; i < 2; i++ {
		quotes, _, err := qf.Fetch(funds)
		if err != nil {
			t.Fatalf("Fetch() #%d unexpected error = %v", i+1, err)
		}
		if quotes[1] != 432.5 {
			t.Errorf("Fetch() #%d quote = %v, want 432.5", i+1, quotes[1])
		}
	}
	if hits != 1 {
		t.Errorf("endpoint hit %d times, want the second fetch served from disk", hits)
	}
}

func TestQuoteFeed_Fetch_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	qf := NewQuoteFeed(srv.URL+"?q=%s", "$.quote.last")
	funds := []Fund{{ID: 1, Name: "City of London Investment Trust (LSE:CTY)"}}

	if _, _, err := qf.Fetch(funds); err == nil {
		t.Error("Fetch() error = nil, want error when nothing could be quoted")
	}
}

func TestQuoteFeed_Fetch_NoTickers(t *testing.T) {
	qf := NewQuoteFeed("http://localhost:0?q=%s", "$.quote.last")
	quotes, _, err := qf.Fetch([]Fund{{ID: 1, Name: "Plain Fund"}})
	if err != nil {
		t.Fatalf("Fetch() unexpected error = %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("got %d quotes, want none", len(quotes))
	}
}
