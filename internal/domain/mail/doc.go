// Package mail models email templates with {{ entity.column }} merge tags, the
// layered mail credentials and outgoing messages.
package mail
