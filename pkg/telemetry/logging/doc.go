// Package logging builds the process logger from configuration.
//
// It wraps log/slog with level and format selection plus redaction of
// sensitive attribute values. Provider credentials, bearer tokens and
// bank account identifiers are masked before a record is written, so a
// stray debug line over a letter of credit does not leak the
// applicant's IBAN.
package logging
