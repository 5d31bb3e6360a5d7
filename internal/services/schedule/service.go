package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"cloudpick/internal/domain"
	"cloudpick/internal/remote"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
)

var (
	listRules    = domain.Endpoint{Service: "events", Operation: "list-rules"}
	describeRule = domain.Endpoint{Service: "events", Operation: "describe-rule"}
	listTargets  = domain.Endpoint{Service: "events", Operation: "list-targets-by-rule"}
	enableRule   = domain.Endpoint{Service: "events", Operation: "enable-rule"}
	disableRule  = domain.Endpoint{Service: "events", Operation: "disable-rule"}
	putTargets   = domain.Endpoint{Service: "events", Operation: "put-targets"}
)

var (
	ruleCodec = selection.MustCodec(
		selection.Column{Field: "State", Width: 8},
		selection.Column{Field: "ScheduleExpression", Width: 24},
	)
	targetCodec = selection.MustCodec(selection.Column{Field: "Arn", Width: 60})
)

// Service implements the schedule subcommands.
type Service struct {
	inv domain.Invoker
	con *console.Console
}

func New(inv domain.Invoker, con *console.Console) *Service {
	return &Service{inv: inv, con: con}
}

// Descriptor registers the schedule domain.
func (s *Service) Descriptor() domain.DomainDescriptor {
	return domain.DomainDescriptor{
		Name:        "schedule",
		Description: "scheduled event rules",
		Subcommands: []domain.SubcommandDescriptor{
			{Name: "list", Description: "pick a rule and print its name", Run: s.List},
			{Name: "describe", Description: "print a rule and its targets", Run: s.Describe},
			{Name: "enable", Description: "enable rules", Run: s.toggle(enableRule, "Enable")},
			{Name: "disable", Description: "disable rules", Run: s.toggle(disableRule, "Disable")},
			{Name: "edit-input", Description: "edit the input a target receives", Run: s.EditInput},
		},
	}
}

// Rules enumerates every rule on the default event bus.
func (s *Service) Rules(ctx context.Context) ([]domain.Entity, error) {
	listing := remote.Listing{
		Endpoint:   listRules,
		ItemsField: "Rules",
		TokenParam: "NextToken",
		IDField:    "Name",
	}
	rules, err := listing.All(ctx, s.inv)
	if err != nil {
		return nil, s.con.Partial("rules", len(rules), err)
	}
	return rules, nil
}

func (s *Service) pick(ctx context.Context) (domain.Entity, error) {
	rules, err := s.Rules(ctx)
	if err != nil {
		return domain.Entity{}, err
	}
	return s.con.Pick(ctx, ruleCodec, rules, "rule")
}

func (s *Service) targets(ctx context.Context, rule string) ([]domain.Entity, error) {
	listing := remote.Listing{
		Endpoint:   listTargets,
		Params:     domain.Params{"Rule": rule},
		ItemsField: "Targets",
		TokenParam: "NextToken",
		IDField:    "Id",
	}
	targets, err := listing.All(ctx, s.inv)
	if err != nil {
		return nil, fmt.Errorf("targets of %s: %w", rule, err)
	}
	return targets, nil
}

func (s *Service) List(ctx context.Context, _ []string) error {
	r, err := s.pick(ctx)
	if err != nil {
		return err
	}
	s.con.Println(r.ID())
	return nil
}

func (s *Service) Describe(ctx context.Context, _ []string) error {
	r, err := s.pick(ctx)
	if err != nil {
		return err
	}
	rule, err := s.inv.Invoke(ctx, describeRule, domain.Params{"Name": r.ID()})
	if err != nil {
		return fmt.Errorf("describe rule %s: %w", r.ID(), err)
	}
	targets, err := s.targets(ctx, r.ID())
	if err != nil {
		return err
	}

	fields := map[string]any(rule)
	list := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		list = append(list, t.Map())
	}
	fields["Targets"] = list
	e, err := domain.NewEntity("Name", fields)
	if err != nil {
		return err
	}
	return s.con.Print(e)
}

func (s *Service) toggle(ep domain.Endpoint, verb string) domain.Handler {
	return func(ctx context.Context, _ []string) error {
		rules, err := s.Rules(ctx)
		if err != nil {
			return err
		}
		chosen, err := s.con.PickMany(ctx, ruleCodec, rules, strings.ToLower(verb))
		if err != nil {
			return err
		}
		ok, err := s.con.Confirm(ctx, "%s %d rule(s)?", verb, len(chosen))
		if err != nil || !ok {
			return err
		}
		_, err = s.con.Apply(ctx, ep.Operation, selection.IDs(chosen), func(ctx context.Context, name string) error {
			_, err := s.inv.Invoke(ctx, ep, domain.Params{"Name": name})
			return err
		})
		return err
	}
}

// EditInput opens a target's constant input in the editor as YAML and writes
// the edited document back as JSON. An unchanged document writes nothing.
func (s *Service) EditInput(ctx context.Context, _ []string) error {
	r, err := s.pick(ctx)
	if err != nil {
		return err
	}
	targets, err := s.targets(ctx, r.ID())
	if err != nil {
		return err
	}
	target, err := s.con.Pick(ctx, targetCodec, targets, "target")
	if err != nil {
		return err
	}

	input, _ := target.Get("Input")
	current, _ := input.(string)
	initial, err := InputToYAML(current)
	if err != nil {
		return err
	}

	edited, err := s.con.Editor.EditText(ctx, initial, ".yaml")
	if err != nil {
		return err
	}
	if edited == initial {
		s.con.Println("no changes")
		return nil
	}
	updated, err := YAMLToInput(edited)
	if err != nil {
		return err
	}

	t := target.Map()
	t["Input"] = updated
	res, err := s.inv.Invoke(ctx, putTargets, domain.Params{
		"Rule":    r.ID(),
		"Targets": []map[string]any{t},
	})
	if err != nil {
		return fmt.Errorf("update target %s of %s: %w", target.ID(), r.ID(), err)
	}
	if n, ok := res["FailedEntryCount"].(float64); ok && n > 0 {
		return fmt.Errorf("update target %s of %s: %v", target.ID(), r.ID(), res["FailedEntries"])
	}
	s.con.Println("updated", target.ID())
	return nil
}

// InputToYAML renders a target's JSON input for editing. An empty input
// yields an empty document. Numbers keep their literal digits.
func InputToYAML(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("target input is not JSON: %w", err)
	}
	b, err := yaml.Marshal(numbersToNodes(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// numbersToNodes replaces every json.Number with a YAML scalar holding the
// same text, so large integers are not routed through float64.
func numbersToNodes(v any) any {
	switch t := v.(type) {
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = numbersToNodes(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = numbersToNodes(e)
		}
		return out
	}
	return v
}

// YAMLToInput validates an edited document and encodes it as JSON.
func YAMLToInput(doc string) (string, error) {
	if strings.TrimSpace(doc) == "" {
		return "", &domain.ValidationError{Field: "input", Reason: "document is empty"}
	}
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &root); err != nil {
		return "", &domain.ValidationError{Field: "input", Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	v, err := nodeValue(&root)
	if err != nil {
		return "", &domain.ValidationError{Field: "input", Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", &domain.ValidationError{Field: "input", Reason: fmt.Sprintf("not representable as JSON: %v", err)}
	}
	return string(b), nil
}

// nodeValue converts a decoded YAML tree to JSON-ready values. Numeric
// scalars that are already JSON number literals pass through as json.Number.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.ShortTag() == "!!merge" {
				var merged any
				if err := n.Decode(&merged); err != nil {
					return nil, err
				}
				return merged, nil
			}
			v, err := nodeValue(val)
			if err != nil {
				return nil, err
			}
			out[key.Value] = v
		}
		return out, nil
	}
	if tag := n.ShortTag(); (tag == "!!int" || tag == "!!float") && json.Valid([]byte(n.Value)) {
		return json.Number(n.Value), nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
