// Package cmd implements the CLI commands for the voice assistant.
//
// # Architecture
//
// This package is organized into the following logical groups:
//
// ## Core CLI
//
//   - root.go: Main entry point, App struct, cobra command setup, and flags
//   - subcommands.go: One-shot commands (ask, history, clear, searchtest,
//     ttstest, transcribe, config init, status)
//
// ## Interactive Mode
//
//   - interactive.go: REPL session, per-turn feed consumer and spinner
//   - commands.go: Slash commands and their Korean aliases (히스토리,
//     초기화, 검색테스트, 음성테스트, 종료)
//   - diagnostics.go: Lookup and speech checks shared by the REPL and
//     the searchtest/ttstest subcommands
//
// # Key Components
//
// ## App
//
// The App struct holds the configuration. It is created in Execute() and
// passed through command handlers; Validate runs once in the root
// command's PersistentPreRunE.
//
// ## InteractiveSession
//
// Owns one assistant pipeline and its conversation store. Each question
// gets a fresh feed whose consumer prints status and search notices while
// the turn runs; the turn waits for the consumer to drain before the
// answer is spoken and the prompt returns.
//
// # Usage
//
//	// Main entry point
//	func main() {
//	    cmd.Execute()
//	}
package cmd
