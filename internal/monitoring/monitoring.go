package monitoring

import (
	"context"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

const (
	LayerRepository = "repositories"
	LayerService    = "services"
	LayerDelivery   = "deliveries"
	LayerUnknown    = "unknown"
)

// Monitor wraps a newrelic segment plus timing for one unit of work. It is
// nil-txn safe: without an active transaction it only measures duration.
type Monitor struct {
	ctx         context.Context
	segmentName string

	// layer is which this struct places, is it in repository, delivery, or service
	layer string

	start time.Time

	segment *newrelic.Segment
}

type initOptions struct {
	layer       string
	segmentName string
}

type InitOption func(*initOptions)

func WithLayer(layer string) InitOption {
	return func(o *initOptions) {
		o.layer = layer
	}
}

func WithSegmentName(segmentName string) InitOption {
	return func(o *initOptions) {
		o.segmentName = segmentName
	}
}

func New(ctx context.Context, opts ...InitOption) *Monitor {
	fOpts := &initOptions{}
	for _, opt := range opts {
		opt(fOpts)
	}

	if fOpts.segmentName == "" {
		// WARNING: don't refactor lines below, it will break the segment name
		pc, file, _, ok := runtime.Caller(1)
		if !ok {
			pc = 0
		}

		segmentName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			segmentName = getSegmentName(fn.Name())
		}
		fOpts.segmentName = segmentName

		switch {
		case strings.Contains(file, LayerRepository):
			fOpts.layer = LayerRepository
		case strings.Contains(file, LayerService):
			fOpts.layer = LayerService
		case strings.Contains(file, LayerDelivery):
			fOpts.layer = LayerDelivery
		default:
			fOpts.layer = LayerUnknown
		}
	}

	txn := newrelic.FromContext(ctx)
	segment := txn.StartSegment(fOpts.segmentName)
	if segment != nil {
		segment.AddAttribute("layer", fOpts.layer)
	}

	return &Monitor{
		ctx:   ctx,
		layer: fOpts.layer,
		start: time.Now(),

		segmentName: fOpts.segmentName,
		segment:     segment,
	}
}

// reFuncName regex pattern to capture package, receiver, and method names
var reFuncName = regexp.MustCompile(`(?:[^/]+/)*([^./]+)\.(?:\(?\*?([^.)]+)\)?\.)?(.+)$`)

func getSegmentName(fullFuncName string) string {
	matches := reFuncName.FindStringSubmatch(fullFuncName)
	if len(matches) < 4 {
		return fullFuncName
	}

	var result []string
	for _, part := range matches[1:] {
		if part != "" {
			result = append(result, part)
		}
	}

	return strings.Join(result, ".")
}
