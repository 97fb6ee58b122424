// Package logging builds the zerolog loggers used across reminderin and carries
// them, together with a per-command trace id, through context.Context.
package logging
