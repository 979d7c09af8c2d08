package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/wire"
)

// ingestPicks decodes newline-delimited Pick JSON messages from r and
// pushes each onto queue (§6 "Pick input"). The registry parameter is not
// consulted: sites are neither created nor updated here. Invalid messages,
// and picks that do not fit in a full queue, are logged and dropped. It
// runs until r is exhausted or ctx
// is done, and is the minimal realization of the documented wire
// contract — the production broker/transport this would run behind is
// explicitly out of scope (§1 Non-goals).
func ingestPicks(ctx context.Context, r io.Reader, registry *site.Registry, queue *pick.Queue) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var msg wire.PickMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		_, p, err := msg.ToDomain()
		if err != nil {
			log.Printf("glass-app: dropping invalid pick message: %v", err)
			continue
		}
		if err := queue.Push(p); err != nil {
			log.Printf("glass-app: pick queue full, dropping pick %s: %v", p.ID, err)
		}
	}
}
