// Package httputil fetches remote cell icons.
//
// PNG and PDF output is produced by rasterizing SVG, and the rasterizer does
// not follow links, so http(s) icon references have to be embedded before
// rendering. [IconFetcher] implements content.IconResolver by downloading
// each icon once and returning it as a data URI:
//
//	cache, _ := httputil.NewCache("", 7*24*time.Hour)
//	fetcher := httputil.NewIconFetcher(cache)
//	opts.Resolver = content.ChainResolver{fetcher, content.NewFileResolver(dir)}
//
// # Caching
//
// [Cache] is a small file cache keyed by SHA-256. Entries expire by TTL;
// `squaremap cache clear` removes them along with cached layouts.
//
// # Retry
//
// [Retry] retries failures wrapped in [RetryableError] with exponential
// backoff. The fetcher marks network errors, 429 and 5xx responses as
// retryable and honors a Retry-After header up to 30 seconds. 404 and
// non-image responses fail at once.
package httputil
