package app

import (
	"io"

	"cloudpick/internal/config"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Settings *config.Config

	In  io.Reader // answers to prompts
	Out io.Writer // results
	Err io.Writer // prompts, summaries of partial failure, errors
}
