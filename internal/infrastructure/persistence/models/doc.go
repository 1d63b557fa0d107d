// Package models contains GORM database models for infrastructure layer.
// These models carry the relationships the table query builder joins over and are
// converted to domain entities at the repository boundary.
package models
