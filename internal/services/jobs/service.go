package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloudpick/internal/aggregate"
	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
	"cloudpick/internal/remote"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
)

var (
	describeQueues = domain.Endpoint{Service: "batch", Operation: "describe-job-queues"}
	listJobs       = domain.Endpoint{Service: "batch", Operation: "list-jobs"}
	describeJobs   = domain.Endpoint{Service: "batch", Operation: "describe-jobs"}
	terminateJob   = domain.Endpoint{Service: "batch", Operation: "terminate-job"}
)

// Statuses are every job status, in lifecycle order.
var Statuses = []string{"SUBMITTED", "PENDING", "RUNNABLE", "STARTING", "RUNNING", "SUCCEEDED", "FAILED"}

// ActiveStatuses are the statuses a job can still be terminated from.
var ActiveStatuses = []string{"SUBMITTED", "PENDING", "RUNNABLE", "STARTING", "RUNNING"}

var (
	queueCodec = selection.MustCodec(selection.Column{Field: "state", Width: 9})
	jobCodec   = selection.MustCodec(
		selection.Column{Field: "jobName", Width: 32},
		selection.Column{Field: "status", Width: 9},
		selection.Column{Field: "created", Width: 20},
	)
)

// Service implements the jobs subcommands.
type Service struct {
	inv         domain.Invoker
	con         *console.Console
	concurrency int
	aggOpts     []aggregate.Option
}

// New builds the service. concurrency bounds the per-status fan-out; 0 runs
// every status at once. opts are passed to every aggregation (tracing).
func New(inv domain.Invoker, con *console.Console, concurrency int, opts ...aggregate.Option) *Service {
	return &Service{inv: inv, con: con, concurrency: concurrency, aggOpts: opts}
}

// Descriptor registers the jobs domain.
func (s *Service) Descriptor() domain.DomainDescriptor {
	return domain.DomainDescriptor{
		Name:        "jobs",
		Description: "batch compute jobs",
		Subcommands: []domain.SubcommandDescriptor{
			{Name: "list", Description: "pick a job and print its id", Usage: "list [queue]", Run: s.List},
			{Name: "describe", Description: "print a job's full description", Usage: "describe [queue]", Run: s.Describe},
			{Name: "terminate", Description: "terminate active jobs", Usage: "terminate [queue]", Run: s.Terminate},
		},
	}
}

func (s *Service) queue(ctx context.Context, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	listing := remote.Listing{
		Endpoint:   describeQueues,
		ItemsField: "jobQueues",
		TokenParam: "nextToken",
		IDField:    "jobQueueName",
	}
	queues, err := listing.All(ctx, s.inv)
	if err != nil {
		return "", s.con.Partial("job queues", len(queues), err)
	}
	q, err := s.con.Pick(ctx, queueCodec, queues, "job queue")
	if err != nil {
		return "", err
	}
	return q.ID(), nil
}

// Jobs gathers the jobs of queue in the given statuses, newest first.
// Statuses that failed are reported on the console; only a total failure is
// returned as an error.
func (s *Service) Jobs(ctx context.Context, queue string, statuses []string) ([]domain.Entity, error) {
	partitions := make([]domain.Partition, 0, len(statuses))
	for _, st := range statuses {
		partitions = append(partitions, domain.Partition{
			Label:  st,
			Params: domain.Params{"jobQueue": queue, "jobStatus": st},
		})
	}

	res := aggregate.Aggregate(ctx, partitions, func(ctx context.Context, p domain.Partition) ([]domain.Entity, error) {
		listing := remote.Listing{
			Endpoint:   listJobs,
			Params:     p.Params,
			ItemsField: "jobSummaryList",
			TokenParam: "nextToken",
			IDField:    "jobId",
		}
		return listing.All(ctx, s.inv)
	}, append([]aggregate.Option{aggregate.WithConcurrency(s.concurrency)}, s.aggOpts...)...)

	breakdown := make([]any, 0, 2*len(res.Outcomes))
	for _, o := range res.Outcomes {
		breakdown = append(breakdown, strings.ToLower(o.Label), o.Count)
	}
	ctxlog.FromContext(ctx).Info("jobs by status", append([]any{"component", "jobs", "queue", queue}, breakdown...)...)

	if err := s.con.Breakdown(res); err != nil {
		return nil, err
	}
	if res.AllFailed() {
		return nil, fmt.Errorf("list jobs in %s: %w", queue, res.Err())
	}

	jobs := make([]domain.Entity, 0, len(res.Entities))
	for _, j := range res.Entities {
		jobs = append(jobs, withCreated(j))
	}
	SortNewestFirst(jobs)
	return jobs, nil
}

// SortNewestFirst orders jobs by createdAt, descending. Jobs without a
// creation time sort last; ties keep their order.
func SortNewestFirst(jobs []domain.Entity) {
	created := func(e domain.Entity) int64 {
		ms, err := e.Int("createdAt")
		if err != nil {
			return -1
		}
		return ms
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return created(jobs[i]) > created(jobs[j])
	})
}

func (s *Service) pickJob(ctx context.Context, args []string) (domain.Entity, error) {
	queue, err := s.queue(ctx, console.Arg(args, 0))
	if err != nil {
		return domain.Entity{}, err
	}
	jobs, err := s.Jobs(ctx, queue, Statuses)
	if err != nil {
		return domain.Entity{}, err
	}
	return s.con.Pick(ctx, jobCodec, jobs, "job")
}

func (s *Service) List(ctx context.Context, args []string) error {
	job, err := s.pickJob(ctx, args)
	if err != nil {
		return err
	}
	s.con.Println(job.ID())
	return nil
}

func (s *Service) Describe(ctx context.Context, args []string) error {
	job, err := s.pickJob(ctx, args)
	if err != nil {
		return err
	}
	res, err := s.inv.Invoke(ctx, describeJobs, domain.Params{"jobs": []string{job.ID()}})
	if err != nil {
		return fmt.Errorf("describe job %s: %w", job.ID(), err)
	}
	described, err := remote.Entities(res, "jobs", "jobId")
	if err != nil {
		return err
	}
	if len(described) == 0 {
		return fmt.Errorf("describe job %s: not returned by %s", job.ID(), describeJobs)
	}
	return s.con.Print(described[0])
}

// Terminate stops the chosen active jobs. A reason is required.
func (s *Service) Terminate(ctx context.Context, args []string) error {
	queue, err := s.queue(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}
	jobs, err := s.Jobs(ctx, queue, ActiveStatuses)
	if err != nil {
		return err
	}
	chosen, err := s.con.PickMany(ctx, jobCodec, jobs, "terminate")
	if err != nil {
		return err
	}

	reason, err := s.con.Prompter.PromptLine(ctx, "Reason")
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return &domain.ValidationError{Field: "reason", Reason: "a termination reason is required"}
	}

	ok, err := s.con.Confirm(ctx, "Terminate %d job(s) in %s?", len(chosen), queue)
	if err != nil || !ok {
		return err
	}
	_, err = s.con.Apply(ctx, terminateJob.Operation, selection.IDs(chosen), func(ctx context.Context, id string) error {
		_, err := s.inv.Invoke(ctx, terminateJob, domain.Params{"jobId": id, "reason": reason})
		return err
	})
	return err
}

// withCreated adds a readable "created" field for labels.
func withCreated(e domain.Entity) domain.Entity {
	t, err := e.Time("createdAt")
	if err != nil {
		return e
	}
	fields := append(e.Fields(), domain.Field{Name: "created", Value: t.UTC().Format(time.RFC3339)})
	out, err := domain.NewEntityFromFields(e.IDField(), fields...)
	if err != nil {
		return e
	}
	return out
}
