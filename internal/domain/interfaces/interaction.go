package interfaces

import "context"

// Selector presents candidate lines in an interactive fuzzy finder and returns
// the chosen lines verbatim. An aborted selection is an empty result, not an
// error.
type Selector interface {
	Select(ctx context.Context, candidates []string, multiple bool, prompt string) ([]string, error)
}

// Prompter collects free text and yes/no answers.
type Prompter interface {
	PromptLine(ctx context.Context, message string) (string, error)
	Confirm(ctx context.Context, message string, defaultYes bool) (bool, error)
}

// Editor lets the user compose text in an external editor. ext selects the
// temp file's extension (and so the editor's syntax mode).
type Editor interface {
	EditText(ctx context.Context, initial, ext string) (string, error)
}
