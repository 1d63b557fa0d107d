// Package i18n loads YAML translation catalogs, negotiates request locales and
// keeps catalogs in sync with the translation keys used in the source tree.
//
// Catalogs live in <dir>/<locale>/<namespace>.yaml. The namespace of a key is its
// first dot separated segment; undotted keys belong to the "messages" namespace.
package i18n
