// Package domain contains shared domain types used across sub-packages.
// Monorepo-specific types live in domain/monorepo. This root package holds
// sentinel errors and the classified error taxonomy (validation, package,
// unclassified) that decides how a failed command is reported.
package domain
