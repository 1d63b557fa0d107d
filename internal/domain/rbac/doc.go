// Package rbac holds users, teams, roles and permissions together with the
// authorization rules connecting them.
package rbac
