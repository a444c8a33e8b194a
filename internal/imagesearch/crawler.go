// Package imagesearch scrapes a web image search results page and downloads
// candidate images into a scratch directory.
package imagesearch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultExt = "jpg"

var allowedExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "bmp": true,
	"tiff": true, "gif": true, "ppm": true, "pgm": true,
}

// Crawler performs an image search and fetches the results with a small
// fixed pool of download workers.
type Crawler struct {
	client  *http.Client
	baseURL string
	workers int
}

// NewCrawler returns a Crawler querying baseURL with the given number of
// download workers (a count below one is treated as one).
func NewCrawler(baseURL string, workers int) *Crawler {
	if workers < 1 {
		workers = 1
	}
	return &Crawler{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		workers: workers,
	}
}

// Crawl searches for query, downloads up to maxNum candidate images into
// destDir and returns the number of files written.
func (c *Crawler) Crawl(ctx context.Context, query, destDir string, maxNum int) (int, error) {
	urls, err := c.search(ctx, query, maxNum)
	if err != nil {
		return 0, err
	}
	return c.download(ctx, urls, destDir), nil
}

func (c *Crawler) search(ctx context.Context, query string, maxNum int) ([]string, error) {
	searchURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch results page: status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	urls := extractImageURLs(doc, maxNum)
	if len(urls) == 0 {
		return nil, fmt.Errorf("no image results for %q", query)
	}
	return urls, nil
}

// resultMeta is the JSON blob the results page embeds on each thumbnail
// anchor; murl carries the full resolution source URL.
type resultMeta struct {
	MediaURL string `json:"murl"`
}

func extractImageURLs(doc *goquery.Document, maxNum int) []string {
	var urls []string
	doc.Find("a.iusc").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, ok := s.Attr("m")
		if !ok {
			return true
		}
		var meta resultMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil || meta.MediaURL == "" {
			return true
		}
		urls = append(urls, meta.MediaURL)
		return len(urls) < maxNum
	})
	return urls
}

func (c *Crawler) download(ctx context.Context, urls []string, destDir string) int {
	jobs := make(chan string)

	var (
		mu    sync.Mutex
		saved int
		wg    sync.WaitGroup
	)
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				if err := c.fetchOne(ctx, u, destDir); err != nil {
					log.Printf("imagesearch: download %s: %v", u, err)
					continue
				}
				mu.Lock()
				saved++
				mu.Unlock()
			}
		}()
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()

	return saved
}

func (c *Crawler) fetchOne(ctx context.Context, rawURL, destDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch image: status %d", res.StatusCode)
	}

	f, err := os.Create(filepath.Join(destDir, Filename(rawURL, defaultExt)))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, res.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Filename derives a filesystem-safe name that is unique per distinct source
// URL: URL-safe base64 of the URL path, plus the path's extension when it is
// a known image type, fallbackExt otherwise.
func Filename(rawURL, fallbackExt string) string {
	var path string
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	ext := fallbackExt
	if i := strings.LastIndex(path, "."); i >= 0 && i < len(path)-1 {
		if cand := path[i+1:]; allowedExts[strings.ToLower(cand)] {
			ext = cand
		}
	}

	return base64.URLEncoding.EncodeToString([]byte(path)) + "." + ext
}
