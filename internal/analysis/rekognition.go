package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/logger"
)

// ErrNoLabels is returned when the image produced no label above the
// confidence floor.
var ErrNoLabels = errors.New("no labels detected")

type labelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionAnalyzer names the food after the most confident AWS
// Rekognition label. Macros are left at zero for the user to fill in.
type RekognitionAnalyzer struct {
	client labelDetector
}

// NewRekognitionAnalyzer loads the default AWS config chain. An empty region
// defers to AWS_REGION and the shared config files.
func NewRekognitionAnalyzer(ctx context.Context, region string) (*RekognitionAnalyzer, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &RekognitionAnalyzer{client: rekognition.NewFromConfig(cfg)}, nil
}

func (a *RekognitionAnalyzer) Analyze(ctx context.Context, image []byte) (Result, error) {
	if len(image) == 0 {
		return Result{}, fmt.Errorf("image is empty")
	}

	out, err := a.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(constants.RekognitionMaxLabels),
		MinConfidence: aws.Float32(constants.RekognitionMinConfidence),
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, canceled(ctx)
		}
		return Result{}, fmt.Errorf("failed to detect labels: %w", err)
	}

	var best *types.Label
	for i := range out.Labels {
		l := &out.Labels[i]
		if l.Name == nil || *l.Name == "" {
			continue
		}
		if best == nil || aws.ToFloat32(l.Confidence) > aws.ToFloat32(best.Confidence) {
			best = l
		}
	}
	if best == nil {
		return Result{}, ErrNoLabels
	}

	logger.Debug("Rekognition labels", "count", len(out.Labels), "best", *best.Name, "confidence", aws.ToFloat32(best.Confidence))
	return Result{Name: *best.Name}, nil
}
