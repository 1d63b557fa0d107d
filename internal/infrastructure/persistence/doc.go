// Package persistence provides database repository implementations.
// It uses GORM as the ORM layer for users, roles, teams, email templates,
// notifications, error logs and table preferences, and builds the filtered,
// sorted and paginated queries behind data tables.
package persistence
