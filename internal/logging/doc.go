// Package logging wraps Zap with context-aware helpers for the loomc
// compiler. Loggers carry a run identifier and the active vocabulary
// document through context so every message can be correlated with the
// compilation that produced it.
package logging
