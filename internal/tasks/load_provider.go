package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
)

// ProviderLoader loads one font provider's catalog.
type ProviderLoader interface {
	LoadProvider(ctx context.Context, name entities.ProviderName) error
}

// LoadProviderTask loads a provider in the background once its tier is due.
type LoadProviderTask struct {
	Provider entities.ProviderName `json:"provider"`
}

// Config returns the queue configuration for provider load tasks.
func (t LoadProviderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "load_provider",
		MaxAttempts: 2,
		Backoff:     10 * time.Second,
		Timeout:     3 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

// LoadProviderProcessor creates a processor function for LoadProviderTask.
func LoadProviderProcessor(loader ProviderLoader) backlite.QueueProcessor[LoadProviderTask] {
	return func(ctx context.Context, task LoadProviderTask) error {
		if loader == nil {
			return fmt.Errorf("provider loader not configured")
		}
		if err := loader.LoadProvider(ctx, task.Provider); err != nil {
			return fmt.Errorf("load provider %s: %w", task.Provider, err)
		}
		logrus.WithField("provider", task.Provider).Debug("Provider load started from queue")
		return nil
	}
}

// NewLoadProviderQueue creates a backlite queue for provider load tasks.
func NewLoadProviderQueue(loader ProviderLoader) backlite.Queue {
	return backlite.NewQueue(LoadProviderProcessor(loader))
}

// LoadScheduler enqueues delayed provider loads on the task queue.
type LoadScheduler struct {
	client *Client
}

func NewLoadScheduler(client *Client) *LoadScheduler {
	return &LoadScheduler{client: client}
}

func (s *LoadScheduler) ScheduleLoad(name entities.ProviderName, delay time.Duration) error {
	_, err := s.client.Add(LoadProviderTask{Provider: name}).Wait(delay).Save()
	return err
}
