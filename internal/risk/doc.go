// Package risk flags tasks that need attention.
//
// Classification runs four layers per task: an overdue check that is never
// cleared, phase-specific due-soon checks, two overrides (in progress,
// recently updated) that clear only the due-soon findings, and an
// effort-variance check comparing actual against estimated allocation.
// A task is at risk when any reason survives all layers.
package risk
