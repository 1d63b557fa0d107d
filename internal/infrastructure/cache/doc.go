// Package cache provides the redis backed stores of the console: login sessions,
// the session layer of table preferences, queued toasts and the pub/sub channel
// carrying live notification events.
package cache
