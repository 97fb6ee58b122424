// Package batch runs one operation over many items and reports partial success.
//
// Reminder mutations are sent one request per item. When a user creates
// several messages at once or deletes several ids, a failure on one item must
// not hide the others:
//   - Items are processed in fixed-size batches with a progress callback after each
//   - Per-item failures are collected into a Report instead of aborting
//   - Cancellation of the context stops before the next item
package batch
