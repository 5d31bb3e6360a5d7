package logs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
	"cloudpick/internal/remote"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
)

var (
	describeGroups  = domain.Endpoint{Service: "logs", Operation: "describe-log-groups"}
	describeStreams = domain.Endpoint{Service: "logs", Operation: "describe-log-streams"}
	getEvents       = domain.Endpoint{Service: "logs", Operation: "get-log-events"}
	filterEvents    = domain.Endpoint{Service: "logs", Operation: "filter-log-events"}
)

var (
	groupCodec  = selection.MustCodec(selection.Column{Field: "storedBytes", Width: 12})
	streamCodec = selection.MustCodec(selection.Column{Field: "lastEventTime", Width: 20})
)

// Config tunes tailing.
type Config struct {
	PollInterval time.Duration
	Lookback     time.Duration
}

// Service implements the logs subcommands.
type Service struct {
	inv domain.Invoker
	con *console.Console
	cfg Config
	now func() time.Time
}

func New(inv domain.Invoker, con *console.Console, cfg Config) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 5 * time.Minute
	}
	return &Service{inv: inv, con: con, cfg: cfg, now: time.Now}
}

// Descriptor registers the logs domain.
func (s *Service) Descriptor() domain.DomainDescriptor {
	return domain.DomainDescriptor{
		Name:        "logs",
		Description: "log groups and streams",
		Subcommands: []domain.SubcommandDescriptor{
			{Name: "groups", Description: "pick a log group and print its name", Usage: "groups [prefix]", Run: s.Groups},
			{Name: "streams", Description: "print the events of a stream", Usage: "streams [group]", Run: s.Streams},
			{Name: "tail", Description: "follow new events of a group", Usage: "tail [group] [filter]", Run: s.Tail},
		},
	}
}

func (s *Service) groups(ctx context.Context, prefix string) ([]domain.Entity, error) {
	listing := remote.Listing{
		Endpoint:   describeGroups,
		Params:     domain.Params{},
		ItemsField: "logGroups",
		TokenParam: "nextToken",
		IDField:    "logGroupName",
	}
	if prefix != "" {
		listing.Params["logGroupNamePrefix"] = prefix
	}
	groups, err := listing.All(ctx, s.inv)
	if err != nil {
		return nil, s.con.Partial("log groups", len(groups), err)
	}
	return groups, nil
}

func (s *Service) group(ctx context.Context, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	groups, err := s.groups(ctx, "")
	if err != nil {
		return "", err
	}
	g, err := s.con.Pick(ctx, groupCodec, groups, "log group")
	if err != nil {
		return "", err
	}
	return g.ID(), nil
}

func (s *Service) Groups(ctx context.Context, args []string) error {
	groups, err := s.groups(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}
	g, err := s.con.Pick(ctx, groupCodec, groups, "log group")
	if err != nil {
		return err
	}
	s.con.Println(g.ID())
	return nil
}

// Streams picks a stream, most recently active first, and prints its events.
func (s *Service) Streams(ctx context.Context, args []string) error {
	group, err := s.group(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}

	listing := remote.Listing{
		Endpoint: describeStreams,
		Params: domain.Params{
			"logGroupName": group,
			"orderBy":      "LastEventTime",
			"descending":   true,
		},
		ItemsField: "logStreams",
		TokenParam: "nextToken",
		IDField:    "logStreamName",
	}
	streams, err := listing.All(ctx, s.inv)
	if err != nil {
		return s.con.Partial("log streams", len(streams), err)
	}
	for i, st := range streams {
		streams[i] = withTime(st, "lastEventTimestamp", "lastEventTime")
	}

	stream, err := s.con.Pick(ctx, streamCodec, streams, "stream")
	if err != nil {
		return err
	}
	return s.printStream(ctx, group, stream.ID())
}

// printStream reads a stream from the head. get-log-events signals its end
// by handing back the token it was called with, so the generic engine (which
// treats that as a loop) is not used here.
func (s *Service) printStream(ctx context.Context, group, stream string) error {
	token := ""
	for {
		params := domain.Params{
			"logGroupName":  group,
			"logStreamName": stream,
			"startFromHead": true,
		}
		if token != "" {
			params["nextToken"] = token
		}
		res, err := s.inv.Invoke(ctx, getEvents, params)
		if err != nil {
			return fmt.Errorf("read %s/%s: %w", group, stream, err)
		}
		events, err := decodeEvents(res)
		if err != nil {
			return err
		}
		for _, ev := range events {
			s.con.Println(formatEvent(ev, false))
		}

		next, _ := res["nextForwardToken"].(string)
		if next == "" || next == token {
			return nil
		}
		token = next
	}
}

// Tail follows events of a group until ctx is cancelled.
func (s *Service) Tail(ctx context.Context, args []string) error {
	group, err := s.group(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}
	t := &tailer{
		svc:    s,
		group:  group,
		filter: console.Arg(args, 1),
		since:  s.now().Add(-s.cfg.Lookback).UnixMilli(),
		seen:   make(map[string]struct{}),
	}

	logger := ctxlog.FromContext(ctx).With("component", "logs", "group", group)
	logger.Info("tailing", "interval", s.cfg.PollInterval)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := t.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			logger.Info("tail stopped")
			return nil
		case <-ticker.C:
		}
	}
}

type tailer struct {
	svc    *Service
	group  string
	filter string

	// since is the newest timestamp printed so far (epoch millis); seen holds
	// the ids of events printed at exactly that timestamp.
	since int64
	seen  map[string]struct{}
}

func (t *tailer) poll(ctx context.Context) error {
	params := domain.Params{
		"logGroupName": t.group,
		"startTime":    t.since,
	}
	if t.filter != "" {
		params["filterPattern"] = t.filter
	}
	listing := remote.Listing{
		Endpoint:   filterEvents,
		Params:     params,
		ItemsField: "events",
		TokenParam: "nextToken",
		IDField:    "eventId",
	}
	events, err := listing.All(ctx, t.svc.inv)
	t.emit(events)
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) {
			// Transient failures are retried on the next tick.
			ctxlog.FromContext(ctx).Warn("poll failed", "component", "logs", "error", te.Diagnostic)
			return nil
		}
		return err
	}
	return nil
}

// emit prints the events not printed before and advances the boundary.
func (t *tailer) emit(events []domain.Entity) {
	newest := t.since
	atNewest := make(map[string]struct{})
	for _, ev := range events {
		ts, err := ev.Int("timestamp")
		if err != nil || ts < t.since {
			continue
		}
		if _, dup := t.seen[ev.ID()]; dup && ts == t.since {
			continue
		}
		t.svc.con.Println(formatEvent(ev, true))

		switch {
		case ts > newest:
			newest = ts
			atNewest = map[string]struct{}{ev.ID(): {}}
		case ts == newest:
			atNewest[ev.ID()] = struct{}{}
		}
	}

	if newest > t.since {
		t.since, t.seen = newest, atNewest
		return
	}
	for id := range atNewest {
		t.seen[id] = struct{}{}
	}
}

func decodeEvents(res domain.Result) ([]domain.Entity, error) {
	raw, _ := res["events"].([]any)
	out := make([]domain.Entity, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: events[%d] is %T", getEvents, i, item)
		}
		// get-log-events carries no event id; the position is stable within a call.
		fields := map[string]any{"eventId": strconv.Itoa(i)}
		for k, v := range m {
			fields[k] = v
		}
		e, err := domain.NewEntity("eventId", fields)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func formatEvent(ev domain.Entity, withStream bool) string {
	ts := "-"
	if t, err := ev.Time("timestamp"); err == nil {
		ts = t.Format(time.RFC3339)
	}
	if withStream {
		return fmt.Sprintf("%s %s %s", ts, ev.Display("logStreamName"), ev.Display("message"))
	}
	return fmt.Sprintf("%s %s", ts, ev.Display("message"))
}

// withTime adds a readable copy of an epoch-millis field for labels.
func withTime(e domain.Entity, from, to string) domain.Entity {
	t, err := e.Time(from)
	if err != nil {
		return e
	}
	fields := append(e.Fields(), domain.Field{Name: to, Value: t})
	out, err := domain.NewEntityFromFields(e.IDField(), fields...)
	if err != nil {
		return e
	}
	return out
}
