// Package notifications models database notifications, one-shot toasts and the
// channels a notification is delivered through.
package notifications
