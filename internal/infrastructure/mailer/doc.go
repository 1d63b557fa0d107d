// Package mailer delivers outgoing email, over SMTP or into the log.
package mailer
