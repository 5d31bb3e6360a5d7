package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"cloudpick/internal/domain"
)

// Separator joins columns, and the last column to the identifier frame.
const Separator = " │ "

const (
	frameOpen  = '⟨'
	frameClose = '⟩'
	ellipsis   = '…'
)

// Column renders one entity field at a fixed width, in runes.
type Column struct {
	Field string
	Width int
}

// Codec formats entities into labels and resolves labels back to entities.
type Codec struct {
	columns []Column
	prefix  int // rune length of the column block, separators included
}

// NewCodec validates the column layout.
func NewCodec(columns ...Column) (*Codec, error) {
	c := &Codec{columns: columns}
	sepLen := utf8.RuneCountInString(Separator)
	for _, col := range columns {
		if col.Field == "" {
			return nil, errors.New("column field must not be empty")
		}
		if col.Width < 1 {
			return nil, fmt.Errorf("column %q: width must be positive, got %d", col.Field, col.Width)
		}
		c.prefix += col.Width + sepLen
	}
	return c, nil
}

// MustCodec is NewCodec for static layouts.
func MustCodec(columns ...Column) *Codec {
	c, err := NewCodec(columns...)
	if err != nil {
		panic(err)
	}
	return c
}

// Format renders one label per entity, in order.
func (c *Codec) Format(entities []domain.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, c.Label(e))
	}
	return out
}

// Label renders a single entity.
func (c *Codec) Label(e domain.Entity) string {
	var b strings.Builder
	for _, col := range c.columns {
		b.WriteString(fit(e.Display(col.Field), col.Width))
		b.WriteString(Separator)
	}
	b.WriteRune(frameOpen)
	b.WriteString(encodeID(e.ID()))
	b.WriteRune(frameClose)
	return b.String()
}

// Resolve maps a chosen label back to its entity. A label that is malformed or
// names an identifier absent from entities yields domain.ErrNotFoundSelection.
func (c *Codec) Resolve(label string, entities []domain.Entity) (domain.Entity, error) {
	id, ok := c.identifier(label)
	if ok {
		for _, e := range entities {
			if e.ID() == id {
				return e, nil
			}
		}
	}
	return domain.Entity{}, fmt.Errorf("%w: %q", domain.ErrNotFoundSelection, label)
}

// ResolveAll resolves a multi-selection, keeping selection order. Any stale
// label fails the whole selection.
func (c *Codec) ResolveAll(labels []string, entities []domain.Entity) ([]domain.Entity, error) {
	byID := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID()] = e
	}

	out := make([]domain.Entity, 0, len(labels))
	for _, label := range labels {
		id, ok := c.identifier(label)
		e, found := byID[id]
		if !ok || !found {
			return nil, fmt.Errorf("%w: %q", domain.ErrNotFoundSelection, label)
		}
		out = append(out, e)
	}
	return out, nil
}

// identifier slices the frame out of label at its fixed offset.
func (c *Codec) identifier(label string) (string, bool) {
	runes := []rune(label)
	if len(runes) < c.prefix+2 {
		return "", false
	}
	frame := runes[c.prefix:]
	if frame[0] != frameOpen || frame[len(frame)-1] != frameClose {
		return "", false
	}
	return decodeID(string(frame[1 : len(frame)-1]))
}

// fit pads or truncates s to exactly width runes.
func fit(s string, width int) string {
	runes := []rune(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
	if len(runes) > width {
		runes = append(runes[:width-1], ellipsis)
		return string(runes)
	}
	return string(runes) + strings.Repeat(" ", width-len(runes))
}

func encodeID(id string) string {
	if needsQuoting(id) {
		return strconv.Quote(id)
	}
	return id
}

func decodeID(s string) (string, bool) {
	if !strings.HasPrefix(s, `"`) {
		return s, s != ""
	}
	id, err := strconv.Unquote(s)
	if err != nil {
		return "", false
	}
	return id, true
}

func needsQuoting(id string) bool {
	if strings.HasPrefix(id, `"`) {
		return true
	}
	for _, r := range id {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return true
		}
	}
	return false
}
