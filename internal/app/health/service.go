// Package health reports process liveness and readiness.
package health

import (
	"context"
	"time"
)

// Pinger is anything whose availability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service tracks uptime and probes its dependencies.
type Service struct {
	started     time.Time
	version     string
	environment string
	deps        map[string]Pinger
}

func NewService(version, environment string, deps map[string]Pinger) *Service {
	return &Service{
		started:     time.Now(),
		version:     version,
		environment: environment,
		deps:        deps,
	}
}

// Status is the liveness payload.
type Status struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Environment   string  `json:"environment"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

func (s *Service) Status() Status {
	return Status{
		Status:        "ok",
		Version:       s.version,
		Environment:   s.environment,
		UptimeSeconds: time.Since(s.started).Seconds(),
	}
}

// Readiness is the readiness payload: ready only when every dependency
// answers.
type Readiness struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

func (s *Service) Ready(ctx context.Context) Readiness {
	out := Readiness{
		Ready:  true,
		Checks: make(map[string]string, len(s.deps)),
	}
	for name, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			out.Ready = false
			out.Checks[name] = err.Error()
			continue
		}
		out.Checks[name] = "ok"
	}
	return out
}
