package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oortcloud/item-catalog/internal/awsx"
	"github.com/oortcloud/item-catalog/internal/images"
	"github.com/oortcloud/item-catalog/internal/imagesearch"
	"github.com/oortcloud/item-catalog/internal/items"
	"github.com/oortcloud/item-catalog/internal/metrics"
	"github.com/oortcloud/item-catalog/internal/validation"
)

// scanLimit caps the collection listing; there is no pagination beyond it.
const scanLimit = 100

// HandlerConfig groups dependencies for the item handlers.
type HandlerConfig struct {
	DynamoDBClient   awsx.DynamoDBAPI
	S3Client         awsx.S3API
	PresignClient    awsx.S3PresignAPI
	CloudWatchClient awsx.CloudWatchAPI

	ItemsTable  string
	ImageBucket string

	ScratchRoot     string
	SearchBaseURL   string
	DownloadWorkers int
	MaxCandidates   int

	URLExpiry        time.Duration
	MetricsNamespace string

	// Acquirer overrides the crawler-backed image acquirer when set.
	Acquirer items.ImageAcquirer
}

// RegisterItemRoutes registers the item catalog routes.
func RegisterItemRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	links := images.NewLinks(cfg.PresignClient, cfg.S3Client, cfg.ImageBucket)

	acquirer := cfg.Acquirer
	if acquirer == nil {
		crawler := imagesearch.NewCrawler(cfg.SearchBaseURL, cfg.DownloadWorkers)
		recorder := metrics.NewRecorder(cfg.CloudWatchClient, cfg.MetricsNamespace)
		acquirer = images.NewAcquirer(cfg.S3Client, cfg.ImageBucket, cfg.ScratchRoot, crawler, cfg.MaxCandidates, recorder)
	}

	store := items.NewStore(cfg.DynamoDBClient, cfg.ItemsTable, acquirer, links)

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 60 * time.Second
	}

	r.GET("/item/:name", func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("name")

		item, err := store.FindByName(ctx, name)
		if err != nil {
			log.Printf("handlers: find item %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred looking up the item."})
			return
		}
		if item == nil {
			c.JSON(http.StatusOK, gin.H{"message": "item not found"})
			return
		}

		// the stored image key stays internal; the client gets a signed,
		// expiring link (null when signing failed or no image is stored)
		var downloadURL any
		if u := links.IssueDownloadURL(ctx, item.Image, expiry); u != "" {
			downloadURL = u
		}

		c.JSON(http.StatusOK, gin.H{
			"name":           item.Name,
			"price":          item.Price,
			"download_url":   downloadURL,
			"url_expires_in": int(expiry / time.Second),
		})
	})

	r.POST("/item/:name", func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("name")

		existing, err := store.FindByName(ctx, name)
		if err != nil {
			log.Printf("handlers: find item %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred inserting the item."})
			return
		}
		if existing != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("an item with name %s already exists", name)})
			return
		}

		var req validation.ItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		if err := store.Insert(ctx, name, *req.Price); err != nil {
			log.Printf("handlers: insert item %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred inserting the item."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"name": name, "price": *req.Price})
	})

	r.PUT("/item/:name", func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("name")

		var req validation.ItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		existing, err := store.FindByName(ctx, name)
		if err != nil {
			log.Printf("handlers: find item %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred updating the item."})
			return
		}

		if existing == nil {
			if err := store.Insert(ctx, name, *req.Price); err != nil {
				log.Printf("handlers: insert item %s: %v", name, err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred inserting the item."})
				return
			}
		} else {
			if err := store.Update(ctx, name, *req.Price); err != nil {
				log.Printf("handlers: update item %s: %v", name, err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred updating the item."})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"name": name, "price": *req.Price})
	})

	r.DELETE("/item/:name", func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("name")

		outcome, err := store.Delete(ctx, name)
		if err != nil {
			log.Printf("handlers: delete item %s: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred deleting the item."})
			return
		}

		switch outcome {
		case items.Deleted:
			c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
		case items.DeletedImageCleanupFailed:
			c.JSON(http.StatusOK, gin.H{"message": "item deleted but there was an issue removing image from S3"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "item does not exist"})
		}
	})

	r.GET("/items", func(c *gin.Context) {
		ctx := c.Request.Context()

		list, err := store.List(ctx, scanLimit)
		if err != nil {
			log.Printf("handlers: list items: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "an error occurred listing the items."})
			return
		}
		if len(list) == 0 {
			c.JSON(http.StatusOK, gin.H{"message": "no items in the database found"})
			return
		}

		out := make([]gin.H, 0, len(list))
		for _, it := range list {
			out = append(out, gin.H{"name": it.Name, "price": it.Price})
		}
		c.JSON(http.StatusOK, out)
	})
}
