package httputil_test

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/squaremap/pkg/httputil"
)

func ExampleCache_Namespace() {
	dir, err := os.MkdirTemp("", "squaremap-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		log.Fatal(err)
	}
	tickers := c.Namespace("ticker:")
	if err := tickers.Set("acme", "ACME Corp"); err != nil {
		log.Fatal(err)
	}

	var name string
	found, _ := tickers.Get("acme", &name)
	fmt.Println(found, name)
	found, _ = c.Get("acme", &name)
	fmt.Println(found)
	// Output:
	// true ACME Corp
	// false
}

func ExampleIconFetcher() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		fmt.Fprint(w, `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	}))
	defer srv.Close()

	icon, err := httputil.NewIconFetcher(nil).Resolve(srv.URL + "/acme.svg")
	if err != nil {
		log.Fatal(err)
	}
	mediaType, _, _ := strings.Cut(strings.TrimPrefix(icon.URI, "data:"), ";")
	fmt.Println(mediaType)
	// Output:
	// image/svg+xml
}
