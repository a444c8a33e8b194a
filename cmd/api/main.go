package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/oortcloud/item-catalog/internal/awsx"
	"github.com/oortcloud/item-catalog/internal/config"
	"github.com/oortcloud/item-catalog/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterItemRoutes(r, cfg)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	clients, err := awsx.NewClients(context.Background(), cfg.AWSRegion)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	hcfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		S3Client:         clients.S3,
		PresignClient:    clients.S3Presign,
		CloudWatchClient: clients.CloudWatch,
		ItemsTable:       cfg.ItemsTable,
		ImageBucket:      cfg.ImageBucket,
		ScratchRoot:      cfg.ScratchRoot,
		SearchBaseURL:    cfg.SearchBaseURL,
		DownloadWorkers:  cfg.DownloadWorkers,
		MaxCandidates:    cfg.MaxCandidates,
		URLExpiry:        time.Duration(cfg.URLExpirySeconds) * time.Second,
		MetricsNamespace: cfg.MetricsNamespace,
	}

	r := setupRouter(hcfg)

	// if RUN_LOCAL is set to "true", run a local HTTP server for development.
	if cfg.RunLocal {
		log.Printf("running local server on %s", cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
