package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
)

const pickFixture1 = `{"Type":"Pick","ID":"p1","Site":{"Station":"ANMO","Channel":"BHZ","Network":"IU","Location":"00"},"Time":"2026-07-30T12:00:00.000Z","Phase":"P","Source":{"AgencyID":"US"}}`
const pickFixture2 = `{"Type":"Pick","ID":"p2","Site":{"Station":"COLA","Channel":"BHZ","Network":"AK","Location":"00"},"Time":"2026-07-30T12:00:01.250Z","Phase":"P","Source":{"AgencyID":"US"}}`

func TestIngestPicksDecodesNewlineDelimitedMessages(t *testing.T) {
	body := strings.NewReader(pickFixture1 + "\n" + pickFixture2 + "\n")
	registry := site.NewRegistry(10)
	queue := pick.NewQueue(4)

	if err := ingestPicks(context.Background(), body, registry, queue); err != nil {
		t.Fatalf("ingestPicks: %v", err)
	}
	if queue.Len() != 2 {
		t.Fatalf("queue.Len() = %d, want 2", queue.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, ok := queue.Pop(ctx)
	if !ok || first.SiteKey != "ANMO.BHZ.IU.00" {
		t.Errorf("first pick = %+v, ok=%v", first, ok)
	}
}

func TestIngestPicksStopsOnMalformedJSON(t *testing.T) {
	body := strings.NewReader("not json\n" + pickFixture1 + "\n")
	registry := site.NewRegistry(10)
	queue := pick.NewQueue(4)

	err := ingestPicks(context.Background(), body, registry, queue)
	if err == nil {
		t.Fatal("expected a decode error from the malformed first line")
	}
	if queue.Len() != 0 {
		t.Errorf("queue.Len() = %d, want 0 — the well-formed line after the bad one must not be decoded", queue.Len())
	}
}

func TestIngestPicksDropsMessagesFailingValidationAndContinues(t *testing.T) {
	invalidPhase := `{"Type":"Pick","ID":"p0","Site":{"Station":"","Network":"IU"},"Time":"2026-07-30T12:00:00.000Z"}`
	body := strings.NewReader(invalidPhase + "\n" + pickFixture1 + "\n")
	registry := site.NewRegistry(10)
	queue := pick.NewQueue(4)

	if err := ingestPicks(context.Background(), body, registry, queue); err != nil {
		t.Fatalf("ingestPicks: %v", err)
	}
	if queue.Len() != 1 {
		t.Fatalf("queue.Len() = %d, want 1 — the invalid message must be dropped, not the whole stream", queue.Len())
	}
}

func TestIngestPicksReturnsImmediatelyOnAlreadyCancelledContext(t *testing.T) {
	body := strings.NewReader(pickFixture1 + "\n")
	registry := site.NewRegistry(10)
	queue := pick.NewQueue(4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ingestPicks(ctx, body, registry, queue); err == nil {
		t.Fatal("expected ctx.Err() from an already-cancelled context")
	}
	if queue.Len() != 0 {
		t.Errorf("queue.Len() = %d, want 0 — nothing should be read once ctx is already done", queue.Len())
	}
}
