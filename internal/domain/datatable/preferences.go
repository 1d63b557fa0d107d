package datatable

// Preferences is the persisted table state of a user
type Preferences struct {
	Sort      string                 `json:"sort,omitempty"`
	Direction Direction              `json:"direction,omitempty"`
	Filters   map[string]interface{} `json:"filters,omitempty"`
	PerPage   int                    `json:"per_page,omitempty"`
}

// DefaultPreferences returns the preferences a table starts with
func DefaultPreferences(def Definition) Preferences {
	opts := def.Options()
	return Preferences{
		Sort:      opts.DefaultSort,
		Direction: opts.DefaultDirection,
		Filters:   map[string]interface{}{},
		PerPage:   opts.DefaultPerPage,
	}
}

// Sanitize drops everything def does not allow: unknown or empty filters,
// non-sortable sort columns and per page values outside the options.
func (p Preferences) Sanitize(def Definition) Preferences {
	req := Request{
		Sort:      p.Sort,
		Direction: p.Direction,
		PerPage:   p.PerPage,
		Filters:   p.Filters,
		Page:      1,
	}.Normalize(def)

	return Preferences{
		Sort:      req.Sort,
		Direction: req.Direction,
		Filters:   req.Filters,
		PerPage:   req.PerPage,
	}
}

// Apply fills the unset parts of req from p. A sort without a direction keeps the
// direction of p.
func (p Preferences) Apply(req Request) Request {
	if req.Sort == "" {
		req.Sort = p.Sort
	}
	if req.Direction == "" {
		req.Direction = p.Direction
	}
	if req.PerPage == 0 {
		req.PerPage = p.PerPage
	}
	if req.Filters == nil {
		req.Filters = make(map[string]interface{}, len(p.Filters))
		for k, v := range p.Filters {
			req.Filters[k] = v
		}
	}
	return req
}

// FromRequest captures the persistent part of req
func FromRequest(req Request) Preferences {
	filters := make(map[string]interface{}, len(req.Filters))
	for k, v := range req.Filters {
		filters[k] = v
	}
	return Preferences{
		Sort:      req.Sort,
		Direction: req.Direction,
		Filters:   filters,
		PerPage:   req.PerPage,
	}
}
