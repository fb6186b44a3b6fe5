package offline

import (
	"context"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/dispatch"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/trigger"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/store"
)

// Service is the surface the rest of the application uses: enqueue a
// deferred intent, run a processing pass, inspect status, and wire the
// connectivity trigger.
type Service struct {
	queue     *queue.Queue
	processor *Processor
	trigger   *trigger.Trigger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	queueOpts     []queue.Option
	processorOpts []ProcessorOption
	triggerOpts   []trigger.Option
}

// WithQueueOptions forwards options to the underlying queue.
func WithQueueOptions(opts ...queue.Option) ServiceOption {
	return func(c *serviceConfig) { c.queueOpts = append(c.queueOpts, opts...) }
}

// WithProcessorOptions forwards options to the underlying processor.
func WithProcessorOptions(opts ...ProcessorOption) ServiceOption {
	return func(c *serviceConfig) { c.processorOpts = append(c.processorOpts, opts...) }
}

// WithTriggerOptions forwards options to the connectivity trigger.
func WithTriggerOptions(opts ...trigger.Option) ServiceOption {
	return func(c *serviceConfig) { c.triggerOpts = append(c.triggerOpts, opts...) }
}

// NewService assembles the offline subsystem over a durable store, a
// dispatch table, a connectivity signal and an auth gate.
func NewService(s store.DurableStore, table *dispatch.Table, auth AuthSignal, signal trigger.Signal, opts ...ServiceOption) *Service {
	var cfg serviceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	q := queue.New(s, cfg.queueOpts...)
	p := NewProcessor(q, table, auth, cfg.processorOpts...)

	svc := &Service{queue: q, processor: p}
	svc.trigger = trigger.New(signal, func(ctx context.Context) {
		svc.RunProcessingPass(ctx)
	}, cfg.triggerOpts...)

	return svc
}

// Enqueue records a deferred intent. The returned item is already
// persisted; a persistence error means the intent is lost and the
// caller must retry.
func (s *Service) Enqueue(resource queue.Resource, operation queue.Operation, data interface{}) (*queue.Item, error) {
	return s.queue.Enqueue(resource, operation, data)
}

// RunProcessingPass executes one processing run.
func (s *Service) RunProcessingPass(ctx context.Context) Result {
	return s.processor.Run(ctx)
}

// Status returns a snapshot summary of the queue and the processor.
func (s *Service) Status() queue.Summary {
	return s.queue.Status(s.processor.IsRunning())
}

// Initialize wires the connectivity trigger. Call once per process
// lifetime; later calls are no-ops.
func (s *Service) Initialize(ctx context.Context) {
	s.trigger.Initialize(ctx)
}
