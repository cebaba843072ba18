// Package history persists question/answer turns to a flat JSON file.
package history

// Log defines the conversation log operations the assistant pipeline needs.
// This interface enables dependency injection and easier testing.
type Log interface {
	// Append records a turn, evicting the oldest entries past the limit
	Append(question, answer string) (Conversation, error)

	// Recent returns the last n turns, oldest first
	Recent(n int) []Conversation

	// Clear backs up and empties the log
	Clear() (backupPath string, err error)

	// Len returns the number of stored turns
	Len() int

	// Summary returns a one-line description of the log
	Summary() string
}

// Ensure concrete type implements the interface
var _ Log = (*Store)(nil)
