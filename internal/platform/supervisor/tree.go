package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// Config controls restart behaviour. The defaults restart a crashed loop
// after RestartBackoff every time.
type Config struct {
	Name             string
	RestartBackoff   time.Duration
	ShutdownTimeout  time.Duration
	FailureThreshold float64
}

func DefaultConfig() Config {
	return Config{
		Name:             "cartographer",
		RestartBackoff:   3 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		FailureThreshold: 0.5,
	}
}

// Loop adapts a blocking pipeline loop to suture.Service.
type Loop struct {
	Name string
	Run  func(ctx context.Context) error
}

func (l Loop) Serve(ctx context.Context) error {
	return l.Run(ctx)
}

func (l Loop) String() string {
	return l.Name
}

type Tree struct {
	sup *suture.Supervisor
}

func New(logger *zap.Logger, cfg Config) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = def.RestartBackoff
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	sup := suture.New(cfg.Name, suture.Spec{
		EventHook:        eventHook(logger),
		FailureThreshold: cfg.FailureThreshold,
		FailureBackoff:   cfg.RestartBackoff,
		BackoffJitter:    &suture.NoJitter{},
		Timeout:          cfg.ShutdownTimeout,
	})
	return &Tree{sup: sup}
}

func (t *Tree) Add(loop Loop) {
	t.sup.Add(loop)
}

// ServeBackground starts every added loop. The channel yields once the tree
// stops, normally after ctx is cancelled.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.sup.ServeBackground(ctx)
}

func eventHook(logger *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		switch ev := e.(type) {
		case suture.EventServicePanic:
			logger.Error("loop panicked",
				zap.String("service", ev.ServiceName),
				zap.String("panic", ev.PanicMsg),
				zap.Bool("restarting", ev.Restarting))
		case suture.EventServiceTerminate:
			logger.Error("loop stopped",
				zap.String("service", ev.ServiceName),
				zap.Any("error", ev.Err),
				zap.Bool("restarting", ev.Restarting))
		case suture.EventBackoff:
			logger.Warn("supervisor backing off", zap.String("supervisor", ev.SupervisorName))
		case suture.EventResume:
			logger.Info("supervisor resumed", zap.String("supervisor", ev.SupervisorName))
		case suture.EventStopTimeout:
			logger.Warn("loop did not stop in time", zap.String("service", ev.ServiceName))
		default:
			logger.Info("supervisor event", zap.String("event", e.String()))
		}
	}
}
