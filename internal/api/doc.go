// Package api is the HTTP client for the reminder scheduling service.
//
// FetchList is the list gateway: it never returns a Go error, it reports one of
// four outcomes (success, not modified, cancelled, failed) so that callers can
// treat a superseded request as a no-op and a failure as non-destructive.
// Mutations, session management, WhatsApp account calls and the link event
// streams return conventional errors.
package api
