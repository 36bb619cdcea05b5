package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/internal/config"
	"github.com/jwebster45206/scriptevent/internal/logger"
	"github.com/jwebster45206/scriptevent/internal/queue"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world-id> entity:EVENT[=params]...\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	slogger := logger.Setup(cfg)

	worldID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatal("Invalid world ID: ", err)
	}

	events := make([]queue.QueuedEvent, 0, len(os.Args)-2)
	for _, arg := range os.Args[2:] {
		ev, err := parseEvent(arg)
		if err != nil {
			log.Fatal(err)
		}
		events = append(events, ev)
	}

	client, err := queue.NewClient(cfg.RedisURL, slogger)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := queue.NewEventQueue(client, slogger)
	for _, ev := range events {
		if err := q.Enqueue(ctx, worldID, ev); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Enqueued %s for %s\n", ev.Event, ev.Entity)
	}

	depth, err := q.Depth(ctx, worldID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Queue depth: %d\n", depth)
}

// parseEvent reads entity:EVENT[=params].
func parseEvent(arg string) (queue.QueuedEvent, error) {
	var ev queue.QueuedEvent
	if i := strings.IndexByte(arg, '='); i >= 0 {
		arg, ev.Params = arg[:i], arg[i+1:]
	}
	entity, event, ok := strings.Cut(arg, ":")
	if !ok || entity == "" || event == "" {
		return ev, fmt.Errorf("bad event %q: want entity:EVENT[=params]", arg)
	}
	ev.Entity, ev.Event = entity, event
	ev.QueuedAt = time.Now()
	return ev, nil
}
