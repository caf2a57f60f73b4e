package testfixtures

import (
	"io"
	"log/slog"
	"time"

	"github.com/example/interview-engine/internal/application"
	"github.com/example/interview-engine/internal/events"
)

// PublicBaseURL is the link base configured by the factory.
const PublicBaseURL = "https://interviews.test"

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// InterviewServiceDeps captures dependencies for constructing an interview
// service. Nil fields fall back to an empty in-memory repository, a recorder
// publisher and a discarding logger.
type InterviewServiceDeps struct {
	Repository application.InterviewRepository
	Publisher  events.Publisher
	Locker     application.Locker
	Metrics    application.Metrics
	Logger     *slog.Logger
	Options    []application.Option
}

// InterviewEnv bundles a service with the collaborators tests inspect.
type InterviewEnv struct {
	Service    *application.InterviewService
	Gateway    *application.AccessGateway
	Repository application.InterviewRepository
	Events     *events.Recorder
	Clock      *Clock
	IDs        *IDGenerator
}

// NewInterviewEnv builds an interview service and its access gateway with
// cheap token hashing and a fixed public base URL.
func (f *ServiceFactory) NewInterviewEnv(deps InterviewServiceDeps) *InterviewEnv {
	env := &InterviewEnv{Repository: deps.Repository, Clock: f.Clock, IDs: f.IDGenerator}
	if env.Repository == nil {
		env.Repository = NewMemoryInterviewRepository()
	}
	publisher := deps.Publisher
	if publisher == nil {
		env.Events = &events.Recorder{}
		publisher = env.Events
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []application.Option{
		application.WithLogger(logger),
		application.WithPublisher(publisher),
		application.WithTokenParams(FastTokenParams),
		application.WithPublicBaseURL(PublicBaseURL),
		application.WithLocker(deps.Locker),
		application.WithMetrics(deps.Metrics),
	}
	opts = append(opts, deps.Options...)

	env.Service = application.NewInterviewService(env.Repository, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), opts...)
	env.Gateway = env.Service.AccessGateway()
	return env
}
