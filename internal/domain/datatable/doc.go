// Package datatable describes admin tables: their columns, filters, row and bulk
// actions, the request/response DTOs exchanged with clients and the per-user table
// preferences.
//
// The package holds no query logic. A QueryBuilder implementation turns a
// Definition and a Request into SQL.
package datatable
