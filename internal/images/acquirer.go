// Package images covers the item image pipeline: acquiring images from a
// web search into S3 and issuing time-limited download links.
package images

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/oortcloud/item-catalog/internal/awsx"
)

// Crawler downloads up to maxNum candidate images for query into destDir
// and reports how many files it wrote.
type Crawler interface {
	Crawl(ctx context.Context, query, destDir string, maxNum int) (int, error)
}

// Recorder counts image acquisition outcomes. Implementations must absorb
// their own failures.
type Recorder interface {
	CountAcquisition(ctx context.Context, outcome string)
}

// Acquisition outcomes reported to the Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeCrawlFailed  = "crawl_failed"
	OutcomeNoCandidates = "no_candidates"
	OutcomeUploadFailed = "upload_failed"
	OutcomeScratchError = "scratch_error"
)

// Acquirer turns an item name into a stored S3 image key.
type Acquirer struct {
	s3Client      awsx.S3API
	bucket        string
	scratchRoot   string
	crawler       Crawler
	maxCandidates int
	waitTimeout   time.Duration
	metrics       Recorder
	randIntn      func(int) int
}

// NewAcquirer returns an Acquirer uploading to bucket. scratchRoot is where
// per-call download directories live (empty means the OS temp directory);
// maxCandidates caps how many search results are fetched per acquisition.
func NewAcquirer(s3Client awsx.S3API, bucket, scratchRoot string, crawler Crawler, maxCandidates int, metrics Recorder) *Acquirer {
	if scratchRoot == "" {
		scratchRoot = os.TempDir()
	}
	if maxCandidates < 1 {
		maxCandidates = 5
	}
	return &Acquirer{
		s3Client:      s3Client,
		bucket:        bucket,
		scratchRoot:   scratchRoot,
		crawler:       crawler,
		maxCandidates: maxCandidates,
		waitTimeout:   30 * time.Second,
		metrics:       metrics,
		randIntn:      rand.Intn,
	}
}

// Acquire searches the web for itemName, uploads one downloaded candidate
// (picked uniformly at random) to S3 and returns its key. It returns the
// empty string when no image could be acquired; such failures are logged
// and absorbed so item writes proceed without an image.
func (a *Acquirer) Acquire(ctx context.Context, itemName string) string {
	dir := filepath.Join(a.scratchRoot, "itemimg-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("images: create scratch dir: %v", err)
		a.count(ctx, OutcomeScratchError)
		return ""
	}
	defer a.cleanup(dir)

	n, err := a.crawler.Crawl(ctx, itemName, dir, a.maxCandidates)
	if err != nil {
		log.Printf("images: crawl %q: %v", itemName, err)
		a.count(ctx, OutcomeCrawlFailed)
		return ""
	}
	if n == 0 {
		log.Printf("images: no images downloaded for %q", itemName)
		a.count(ctx, OutcomeNoCandidates)
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		log.Printf("images: list scratch dir for %q: %v", itemName, err)
		a.count(ctx, OutcomeNoCandidates)
		return ""
	}

	// uniform pick over what actually arrived, not a fixed index
	key := entries[a.randIntn(len(entries))].Name()

	if err := a.upload(ctx, filepath.Join(dir, key), key); err != nil {
		log.Printf("images: upload %s for %q: %v", key, itemName, err)
		a.count(ctx, OutcomeUploadFailed)
		return ""
	}

	a.count(ctx, OutcomeOK)
	return key
}

func (a *Acquirer) upload(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open candidate: %w", err)
	}
	defer f.Close()

	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	// block until the object is visible before recording its key
	waiter := s3.NewObjectExistsWaiter(a.s3Client)
	err = waiter.Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, a.waitTimeout)
	if err != nil {
		return fmt.Errorf("wait for object: %w", err)
	}
	return nil
}

func (a *Acquirer) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("images: remove scratch dir %s: %v", dir, err)
	}
}

func (a *Acquirer) count(ctx context.Context, outcome string) {
	if a.metrics != nil {
		a.metrics.CountAcquisition(ctx, outcome)
	}
}
