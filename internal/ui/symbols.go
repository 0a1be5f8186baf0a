package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess   = "✓" // Run finished with exit 0
	SymbolFail      = "✗" // Run failed or could not start
	SymbolPending   = "○" // No run yet
	SymbolRunning   = "◐" // Run in progress
	SymbolCancelled = "⊘" // Run cancelled by the operator
	SymbolSelected  = "[x]"
	SymbolUnchecked = "[ ]"
)
