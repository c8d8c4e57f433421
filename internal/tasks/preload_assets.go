package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"
)

// FamilyLoader preloads the assets of known font families.
type FamilyLoader interface {
	LoadFamilies(ctx context.Context, families []string) int
}

// PreloadAssetsTask preloads one deferred chunk of font families.
type PreloadAssetsTask struct {
	Families []string `json:"families"`
}

// Config returns the queue configuration for asset preload tasks.
func (t PreloadAssetsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "preload_assets",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
	}
}

// PreloadAssetsProcessor creates a processor function for PreloadAssetsTask.
func PreloadAssetsProcessor(loader FamilyLoader) backlite.QueueProcessor[PreloadAssetsTask] {
	return func(ctx context.Context, task PreloadAssetsTask) error {
		if loader == nil {
			return fmt.Errorf("family loader not configured")
		}
		n := loader.LoadFamilies(ctx, task.Families)
		logrus.WithFields(logrus.Fields{
			"requested": len(task.Families),
			"loaded":    n,
		}).Debug("Preloaded deferred font chunk")
		return nil
	}
}

// NewPreloadAssetsQueue creates a backlite queue for deferred asset preloads.
func NewPreloadAssetsQueue(loader FamilyLoader) backlite.Queue {
	return backlite.NewQueue(PreloadAssetsProcessor(loader))
}

// ChunkScheduler enqueues deferred preload chunks on the task queue.
type ChunkScheduler struct {
	client *Client
}

func NewChunkScheduler(client *Client) *ChunkScheduler {
	return &ChunkScheduler{client: client}
}

func (s *ChunkScheduler) ScheduleChunk(families []string, delay time.Duration) error {
	if len(families) == 0 {
		return nil
	}
	_, err := s.client.Add(PreloadAssetsTask{Families: families}).Wait(delay).Save()
	return err
}
