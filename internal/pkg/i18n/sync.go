package i18n

// SyncResult lists the keys added per locale
type SyncResult struct {
	Added  map[string][]string `json:"added"`
	DryRun bool                `json:"dry_run"`
}

// Total counts the added keys over all locales
func (r *SyncResult) Total() int {
	n := 0
	for _, keys := range r.Added {
		n += len(keys)
	}
	return n
}

// PruneResult lists the keys removed per locale
type PruneResult struct {
	Removed map[string][]string `json:"removed"`
	DryRun  bool                `json:"dry_run"`
}

// Total counts the removed keys over all locales
func (r *PruneResult) Total() int {
	n := 0
	for _, keys := range r.Removed {
		n += len(keys)
	}
	return n
}

// Sync adds every key in keys missing from a locale. The base locale gets the key
// itself as value, other locales the base locale value. Nothing is changed when
// dryRun is set.
func Sync(c *Catalog, keys []string, dryRun bool) *SyncResult {
	result := &SyncResult{Added: map[string][]string{}, DryRun: dryRun}
	base := c.BaseLocale()

	// the base locale goes first so other locales copy its new values
	for _, locale := range c.Locales() {
		for _, key := range keys {
			if _, ok := c.Lookup(locale, key); ok {
				continue
			}
			result.Added[locale] = append(result.Added[locale], key)
			if dryRun {
				continue
			}

			value := key
			if locale != base {
				if v, ok := c.Lookup(base, key); ok {
					value = v
				}
			}
			c.Set(locale, key, value)
		}
	}
	return result
}

// Prune removes every key not in used from every locale. Nothing is changed when
// dryRun is set.
func Prune(c *Catalog, used []string, dryRun bool) *PruneResult {
	result := &PruneResult{Removed: map[string][]string{}, DryRun: dryRun}
	keep := make(map[string]bool, len(used))
	for _, k := range used {
		keep[k] = true
	}

	for _, locale := range c.Locales() {
		for _, key := range c.Keys(locale) {
			if keep[key] {
				continue
			}
			result.Removed[locale] = append(result.Removed[locale], key)
			if !dryRun {
				c.Delete(locale, key)
			}
		}
	}
	return result
}
