// Package metrics publishes best-effort operational counters to CloudWatch.
package metrics

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/oortcloud/item-catalog/internal/awsx"
)

// Recorder wraps a CloudWatch client and a metric namespace.
type Recorder struct {
	cw        awsx.CloudWatchAPI
	namespace string
}

// NewRecorder returns a Recorder bound to namespace.
func NewRecorder(cw awsx.CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{
		cw:        cw,
		namespace: namespace,
	}
}

// CountAcquisition records one image acquisition attempt with its outcome.
// Publish failures are logged and dropped; metrics never affect request
// handling.
func (r *Recorder) CountAcquisition(ctx context.Context, outcome string) {
	if r == nil || r.cw == nil {
		return
	}

	_, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String("ImageAcquisition"),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String("Outcome"), Value: aws.String(outcome)},
				},
			},
		},
	})
	if err != nil {
		log.Printf("metrics: put metric data: %v", err)
	}
}
