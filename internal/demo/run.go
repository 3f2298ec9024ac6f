package demo

import (
	"context"
	"sync"
	"time"
)

// Source feeds one container. A source with a File follows it, otherwise it
// generates synthetic lines every Interval.
type Source struct {
	Container ContainerSpec
	File      string
	FromEnd   bool
	Interval  time.Duration
}

// Run registers every source's container and feeds it until ctx is done
func (b *Backend) Run(ctx context.Context, sources []Source) {
	var wg sync.WaitGroup

	for _, src := range sources {
		src := src
		spec := src.Container
		if spec.LogPath == "" {
			spec.LogPath = src.File
		}
		b.AddContainer(spec)

		write := func(line string) {
			if err := b.Write(spec.Name, line); err != nil {
				b.logger.Warn().Err(err).Str("container", spec.Name).Msg("dropping line")
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if src.File == "" {
				Generate(ctx, src.Interval, write)
				return
			}
			if err := FollowFile(ctx, src.File, src.FromEnd, write, b.logger); err != nil {
				b.logger.Error().Err(err).Str("container", spec.Name).Msg("log source stopped")
			}
		}()
	}

	wg.Wait()
}
