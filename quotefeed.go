package fundval

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/stvnw/fundval/date"
)

// QuoteFeed fetches current prices for funds whose names carry a stock code,
// e.g. "City of London Investment Trust (LSE:CTY)". The feed endpoint and the
// location of the price inside its JSON response are configurable, since
// scrape-friendly quote APIs come and go.
type QuoteFeed struct {
	Client *http.Client
	// URL is the endpoint template; the stock code replaces %s.
	URL string
	// Path is the jsonpath locating the price in the response.
	Path string
}

// NewQuoteFeed returns a feed with a plain client. Pass Cached() instead when
// intraday precision does not matter.
func NewQuoteFeed(url, path string) *QuoteFeed {
	return &QuoteFeed{Client: new(http.Client), URL: url, Path: path}
}

// Cached switches the feed to a client whose responses are cached on disk
// until midnight, so repeated runs on the same day hit the endpoint once.
func (qf *QuoteFeed) Cached() *QuoteFeed {
	qf.Client = &http.Client{Transport: &dailyCache{next: http.DefaultTransport}}
	return qf
}

// dailyCache caches responses in the temp dir, keyed on today's date so
// every entry expires at midnight.
type dailyCache struct {
	next http.RoundTripper
}

func (c *dailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	sum := sha1.Sum([]byte(date.Today().String() + " " + req.Method + " " + req.URL.String()))
	file := filepath.Join(os.TempDir(), fmt.Sprintf("fundval-quote-%x", sum))

	if content, err := os.ReadFile(file); err == nil {
		return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
	}

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%s %s%s %s", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	// DumpResponse leaves the body readable for the caller
	if content, err := httputil.DumpResponse(resp, true); err == nil {
		if err := os.WriteFile(file, content, 0o600); err != nil {
			log.Printf("quote cache write: %v", err)
		}
	}
	return resp, nil
}

// getJSON fetches addr and decodes the JSON response body into data.
func (qf *QuoteFeed) getJSON(addr string, data any) error {
	resp, err := qf.Client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot GET %s%s: %s", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(data)
}

var tickerPattern = regexp.MustCompile(`\(([A-Z]+:[A-Z0-9.]+)\)\s*$`)

// ExtractTicker returns the stock code embedded in a fund name, or "".
func ExtractTicker(name string) string {
	m := tickerPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// quote fetches one current price.
func (qf *QuoteFeed) quote(name, code string) (float64, error) {
	addr := fmt.Sprintf(qf.URL, code)

	var jobj any
	if err := qf.getJSON(addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving %q: %w", name, err)
	}

	jval, err := jsonpath.Get(qf.Path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing %q: %q %w", name, qf.Path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer, or
	// a single answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		// sometimes these APIs return the value as a string
		sval, ok := jval.(string)
		if !ok {
			return math.NaN(), fmt.Errorf("cannot read value from %q: neither a float nor a string", name)
		}
		sval = strings.ReplaceAll(sval, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		val, err = strconv.ParseFloat(sval, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("cannot read value from %q: invalid string %q: %w", name, sval, err)
		}
	}
	if val == 0 {
		return math.NaN(), fmt.Errorf("empty quote for %s", name)
	}
	return val, nil
}

// Fetch returns current prices for every fund with a recognisable stock
// code, with the fetch time to merge them into a price cache. Funds that
// fail to quote are skipped with a log line; the fetch only errors when no
// fund could be quoted at all.
func (qf *QuoteFeed) Fetch(funds []Fund) (map[Id]float64, int64, error) {
	quotes := make(map[Id]float64)
	var lastErr error
	for _, f := range funds {
		code := ExtractTicker(f.Name)
		if code == "" {
			continue
		}
		val, err := qf.quote(f.Name, code)
		if err != nil {
			log.Printf("quote %s: %v", f.Name, err)
			lastErr = err
			continue
		}
		quotes[f.ID] = val
	}
	if len(quotes) == 0 && lastErr != nil {
		return nil, 0, fmt.Errorf("no fund could be quoted: %w", lastErr)
	}
	return quotes, time.Now().Unix(), nil
}
