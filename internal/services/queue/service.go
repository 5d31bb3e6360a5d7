package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"cloudpick/internal/domain"
	"cloudpick/internal/remote"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
)

const (
	idField = "QueueUrl"

	// maxBodyBytes is the platform's message size limit.
	maxBodyBytes = 256 * 1024
	peekCount    = 10
)

var (
	listQueues    = domain.Endpoint{Service: "sqs", Operation: "list-queues"}
	getAttributes = domain.Endpoint{Service: "sqs", Operation: "get-queue-attributes"}
	sendMessage   = domain.Endpoint{Service: "sqs", Operation: "send-message"}
	receive       = domain.Endpoint{Service: "sqs", Operation: "receive-message"}
	purgeQueue    = domain.Endpoint{Service: "sqs", Operation: "purge-queue"}
)

var codec = selection.MustCodec(selection.Column{Field: "Name", Width: 40})

// Service implements the queue subcommands.
type Service struct {
	inv domain.Invoker
	con *console.Console
}

func New(inv domain.Invoker, con *console.Console) *Service {
	return &Service{inv: inv, con: con}
}

// Descriptor registers the queue domain.
func (s *Service) Descriptor() domain.DomainDescriptor {
	return domain.DomainDescriptor{
		Name:        "queue",
		Description: "message queues",
		Subcommands: []domain.SubcommandDescriptor{
			{Name: "list", Description: "pick a queue and print its URL", Run: s.List},
			{Name: "describe", Description: "print every attribute of a queue", Run: s.Describe},
			{
				Name:        "send",
				Description: "send a message to a queue",
				Usage:       "send [queue-url] [--edit] [--yaml]",
				Run:         s.Send,
			},
			{Name: "receive", Description: "peek at up to 10 messages", Run: s.Receive},
			{Name: "purge", Description: "delete all messages of one or more queues", Run: s.Purge},
		},
	}
}

// Queues enumerates every queue, named by the last URL segment.
func (s *Service) Queues(ctx context.Context) ([]domain.Entity, error) {
	listing := remote.Listing{
		Endpoint:   listQueues,
		Params:     domain.Params{"MaxResults": 1000},
		ItemsField: "QueueUrls",
		TokenParam: "NextToken",
		IDField:    idField,
	}
	urls, err := listing.All(ctx, s.inv)
	if err != nil {
		return nil, s.con.Partial("queues", len(urls), err)
	}

	out := make([]domain.Entity, 0, len(urls))
	for _, u := range urls {
		e, err := domain.NewEntityFromFields(idField,
			domain.Field{Name: "Name", Value: path.Base(u.ID())},
			domain.Field{Name: idField, Value: u.ID()},
		)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service) pick(ctx context.Context) (domain.Entity, error) {
	queues, err := s.Queues(ctx)
	if err != nil {
		return domain.Entity{}, err
	}
	return s.con.Pick(ctx, codec, queues, "queue")
}

func (s *Service) queueURL(ctx context.Context, arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	q, err := s.pick(ctx)
	if err != nil {
		return "", err
	}
	return q.ID(), nil
}

func (s *Service) List(ctx context.Context, _ []string) error {
	q, err := s.pick(ctx)
	if err != nil {
		return err
	}
	s.con.Println(q.ID())
	return nil
}

func (s *Service) Describe(ctx context.Context, args []string) error {
	url, err := s.queueURL(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}
	res, err := s.inv.Invoke(ctx, getAttributes, domain.Params{
		"QueueUrl":       url,
		"AttributeNames": []string{"All"},
	})
	if err != nil {
		return fmt.Errorf("describe %s: %w", url, err)
	}

	attrs, _ := res["Attributes"].(map[string]any)
	fields := map[string]any{idField: url}
	for k, v := range attrs {
		fields[k] = v
	}
	e, err := domain.NewEntity(idField, fields)
	if err != nil {
		return err
	}
	return s.con.Print(e)
}

// Send composes a message body and sends it. With --edit the body is written
// in the editor as JSON; with --yaml it is written as YAML and sent as JSON.
func (s *Service) Send(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("queue send", pflag.ContinueOnError)
	edit := fs.Bool("edit", false, "compose the body in the editor")
	asYAML := fs.Bool("yaml", false, "compose the body as YAML in the editor and send it as JSON")
	if err := fs.Parse(args); err != nil {
		return &domain.ValidationError{Field: "flags", Reason: err.Error()}
	}

	url, err := s.queueURL(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	body, err := s.compose(ctx, *edit, *asYAML)
	if err != nil {
		return err
	}
	if err := validateBody(body); err != nil {
		return err
	}

	res, err := s.inv.Invoke(ctx, sendMessage, domain.Params{"QueueUrl": url, "MessageBody": body})
	if err != nil {
		return fmt.Errorf("send to %s: %w", url, err)
	}
	s.con.Println(res["MessageId"])
	return nil
}

func (s *Service) compose(ctx context.Context, edit, asYAML bool) (string, error) {
	switch {
	case asYAML:
		text, err := s.con.Editor.EditText(ctx, "", ".yaml")
		if err != nil {
			return "", err
		}
		return yamlToJSON(text)
	case edit:
		text, err := s.con.Editor.EditText(ctx, "", ".json")
		if err != nil {
			return "", err
		}
		return strings.TrimRight(text, "\n"), nil
	}
	return s.con.Prompter.PromptLine(ctx, "Message body")
}

func yamlToJSON(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return "", &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("not representable as JSON: %v", err)}
	}
	return string(b), nil
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return &domain.ValidationError{Field: "body", Reason: "message body must not be empty"}
	}
	if len(body) > maxBodyBytes {
		return &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("message body is %d bytes, limit is %d", len(body), maxBodyBytes)}
	}
	return nil
}

// Receive shows up to ten messages without hiding them from consumers.
func (s *Service) Receive(ctx context.Context, args []string) error {
	url, err := s.queueURL(ctx, console.Arg(args, 0))
	if err != nil {
		return err
	}
	res, err := s.inv.Invoke(ctx, receive, domain.Params{
		"QueueUrl":              url,
		"MaxNumberOfMessages":   peekCount,
		"VisibilityTimeout":     0,
		"WaitTimeSeconds":       0,
		"MessageAttributeNames": []string{"All"},
	})
	if err != nil {
		return fmt.Errorf("receive from %s: %w", url, err)
	}

	messages, err := remote.Entities(res, "Messages", "MessageId")
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		s.con.Println("no messages visible")
		return nil
	}
	for _, m := range messages {
		s.con.Println("---", m.ID())
		s.con.Println(m.Display("Body"))
	}
	return nil
}

func (s *Service) Purge(ctx context.Context, _ []string) error {
	queues, err := s.Queues(ctx)
	if err != nil {
		return err
	}
	chosen, err := s.con.PickMany(ctx, codec, queues, "purge")
	if err != nil {
		return err
	}
	ok, err := s.con.Confirm(ctx, "Purge every message from %d queue(s)?", len(chosen))
	if err != nil || !ok {
		return err
	}

	_, err = s.con.Apply(ctx, purgeQueue.Operation, selection.IDs(chosen), func(ctx context.Context, url string) error {
		_, err := s.inv.Invoke(ctx, purgeQueue, domain.Params{"QueueUrl": url})
		return err
	})
	return err
}

