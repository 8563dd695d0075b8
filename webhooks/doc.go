// Package webhooks ingests bank payment notifications.
//
// Deduplication rides on the store's unique constraint over the operation
// id: the first committed insert wins, every later delivery of the same id
// resolves to a success acknowledgment with no state change. This keeps
// at-least-once upstream delivery safe without a claim table.
package webhooks
