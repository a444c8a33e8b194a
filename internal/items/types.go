package items

// Item is the record stored in the items DynamoDB table. Image holds the
// S3 key of the item's picture and never leaves the API directly; it is
// translated into a presigned download URL at read time.
type Item struct {
	Name  string  `json:"name" dynamodbav:"name"`
	Price float64 `json:"price" dynamodbav:"price"`
	Image string  `json:"-" dynamodbav:"image,omitempty"`
}

// DeleteOutcome reports what a Delete call accomplished.
type DeleteOutcome int

const (
	// DeleteNotFound means no record existed under the name.
	DeleteNotFound DeleteOutcome = iota
	// Deleted means the record (and its image, if any) is gone.
	Deleted
	// DeletedImageCleanupFailed means the record is gone but the image
	// object could not be removed from S3.
	DeletedImageCleanupFailed
)
