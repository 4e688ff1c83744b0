package refresh

import (
	"context"
	"testing"
	"time"

	"ChipPulse/internal/collector"
	"ChipPulse/internal/model"
	"ChipPulse/internal/pipeline"
)

func newTestService(fetcher collector.Fetcher) *Service {
	runner := pipeline.NewRunner(collector.NewCollector(fetcher), nil)
	return NewService(context.Background(), runner, pipeline.Request{
		Tickers: []string{"NVDA"},
		Period:  model.Period1Mo,
	})
}

func snapshotFor(period model.Period) *model.Snapshot {
	return &model.Snapshot{Period: period, GeneratedAt: time.Now().UTC()}
}

func TestService_PublishLastWriteWins(t *testing.T) {
	s := newTestService(&collector.MockFetcher{})

	first := s.Begin()
	second := s.Begin()
	if second <= first {
		t.Fatalf("expected increasing sequence numbers, got %d then %d", first, second)
	}

	newer := snapshotFor(model.Period1Y)
	if !s.Publish(second, newer, pipeline.Request{Period: model.Period1Y}) {
		t.Fatal("expected the newer run to publish")
	}

	// The older run finishes late; its snapshot must be dropped.
	stale := snapshotFor(model.Period1Mo)
	if s.Publish(first, stale, pipeline.Request{Period: model.Period1Mo}) {
		t.Fatal("expected the stale run to be dropped")
	}
	if got := s.Latest(); got != newer {
		t.Errorf("expected latest snapshot to stay at the newer run, got %+v", got)
	}
	if got := s.Params().Period; got != model.Period1Y {
		t.Errorf("expected params from the newer run, got period %s", got)
	}
}

func TestService_LatestStartsNil(t *testing.T) {
	s := newTestService(&collector.MockFetcher{})
	if s.Latest() != nil {
		t.Fatal("expected no snapshot before the first publish")
	}
}

func TestService_PublishUpdatesParams(t *testing.T) {
	s := newTestService(&collector.MockFetcher{})

	if got := s.Params(); got.Period != model.Period1Mo {
		t.Fatalf("expected default period 1mo, got %s", got.Period)
	}

	req := pipeline.Request{Tickers: []string{"AMD"}, Period: model.Period5Y, IntervalDays: 3}
	s.Publish(s.Begin(), snapshotFor(model.Period5Y), req)

	got := s.Params()
	if got.Period != model.Period5Y || got.IntervalDays != 3 {
		t.Errorf("expected published params to become the defaults, got %+v", got)
	}
}

func TestService_RunNowPublishes(t *testing.T) {
	fetcher := &collector.MockFetcher{SeriesBySymbol: map[string][]model.PricePoint{
		"NVDA": {
			{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 10, Volume: 100},
			{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 12, Volume: 100},
			{Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 11, Volume: 100},
		},
	}}
	s := newTestService(fetcher)

	s.RunNow()

	snap := s.Latest()
	if snap == nil {
		t.Fatal("expected a snapshot after RunNow")
	}
	if snap.Period != model.Period1Mo {
		t.Errorf("expected period 1mo, got %s", snap.Period)
	}
	if len(snap.Symbols) != 1 || snap.Symbols[0] != "NVDA" {
		t.Errorf("expected symbols [NVDA], got %v", snap.Symbols)
	}
}

func TestService_RunNowKeepsOldSnapshotOnFailure(t *testing.T) {
	fetcher := &collector.MockFetcher{Errors: map[string]error{"NVDA": context.DeadlineExceeded}}
	s := newTestService(fetcher)

	previous := snapshotFor(model.Period1Mo)
	s.Publish(s.Begin(), previous, s.Params())

	s.RunNow()

	if got := s.Latest(); got != previous {
		t.Errorf("expected failed refresh to keep the previous snapshot, got %+v", got)
	}
}

func TestService_RegisterRejectsBadExpression(t *testing.T) {
	s := newTestService(&collector.MockFetcher{})
	if err := s.Register("not a cron expr"); err == nil {
		t.Fatal("expected error for malformed cron expression")
	}
	if err := s.Register("0 0 * * * *"); err != nil {
		t.Fatalf("expected hourly expression to register, got %v", err)
	}
}
