// Package directory keeps a local SQLite copy of the linked account's contacts
// and groups, so reminder targets can be shown by name without a round trip.
package directory
