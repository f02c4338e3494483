package monitoring

import (
	"time"

	"go.uber.org/zap"
)

var messagePrefix = map[string]string{
	LayerRepository: "[REPOSITORY]",
	LayerService:    "[SERVICE]",
	LayerDelivery:   "[DELIVERY]",
	LayerUnknown:    "[-]",
}

type finishOptions struct {
	err    error
	fields []zap.Field
}

type FinishOption func(*finishOptions)

func WithFinishCheckError(err error) FinishOption {
	return func(o *finishOptions) {
		o.err = err
	}
}

func WithFinishFields(fields ...zap.Field) FinishOption {
	return func(o *finishOptions) {
		o.fields = fields
	}
}

func (m *Monitor) Finish(opts ...FinishOption) {
	fOpts := &finishOptions{}
	for _, opt := range opts {
		opt(fOpts)
	}

	fOpts.fields = append(fOpts.fields,
		zap.String("segment", m.segmentName),
		zap.Duration("processDuration", time.Since(m.start)))

	if fOpts.err != nil {
		fOpts.fields = append(fOpts.fields,
			zap.String("status", "error"),
			zap.Error(fOpts.err))

		zap.L().Warn(messagePrefix[m.layer], fOpts.fields...)
	} else if m.layer == LayerDelivery || m.layer == LayerService {
		// only log info from delivery & service layer to avoid duplicate log
		fOpts.fields = append(fOpts.fields, zap.String("status", "success"))

		zap.L().Debug(messagePrefix[m.layer], fOpts.fields...)
	}

	if m.segment != nil {
		m.segment.End()
	}
}
