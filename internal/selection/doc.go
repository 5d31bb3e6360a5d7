// Package selection turns entities into fuzzy-selectable lines and back.
//
// A label is a row of fixed-width columns followed by the entity's identifier
// in a frame:
//
//	my-bucket/logs/2024… │ 2024-01-02T03:04:05Z │ 1048576    │ ⟨my-bucket/logs/2024/01/02/app.log⟩
//
// Columns may truncate; the frame never does. Because every column has a
// known width, the frame always starts at the same rune offset, so decoding
// slices it out by position instead of searching for delimiters. Identifiers
// or display values containing parentheses, frame runes or the column
// separator therefore decode exactly. Identifiers with control characters (or
// a leading double quote) are written Go-quoted inside the frame so a label
// always stays on one line.
package selection
