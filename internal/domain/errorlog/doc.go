// Package errorlog models reported application errors and the channels they are
// sent to.
package errorlog
