package datatable

import (
	"context"
	"errors"
)

// ErrNoHandler is returned when an action without handler is executed
var ErrNoHandler = errors.New("action has no handler")

// Gate answers permission checks for the acting user
type Gate func(permission string) bool

// ActionHandler runs a row action
type ActionHandler func(ctx context.Context, row interface{}) error

// BulkActionHandler runs a bulk action over primary keys
type BulkActionHandler func(ctx context.Context, ids []string) error

// VisibilityFunc decides whether an action is offered for a row
type VisibilityFunc func(row interface{}) bool

// Action is a per-row action such as edit or delete
type Action struct {
	key        string
	label      string
	icon       string
	variant    string
	permission string
	confirm    string
	visibleFn  VisibilityFunc
	handler    ActionHandler
}

// NewAction creates a row action
func NewAction(key string) *Action {
	return &Action{
		key:     key,
		label:   Humanize(key),
		variant: "default",
	}
}

// Label sets the label
func (a *Action) Label(label string) *Action {
	a.label = label
	return a
}

// Icon sets the icon name
func (a *Action) Icon(icon string) *Action {
	a.icon = icon
	return a
}

// Variant sets the presentation variant (default, primary, danger)
func (a *Action) Variant(variant string) *Action {
	a.variant = variant
	return a
}

// Can restricts the action to users holding permission
func (a *Action) Can(permission string) *Action {
	a.permission = permission
	return a
}

// Confirm requires a confirmation with the given message
func (a *Action) Confirm(message string) *Action {
	a.confirm = message
	return a
}

// VisibleWhen restricts the action to rows matching fn
func (a *Action) VisibleWhen(fn VisibilityFunc) *Action {
	a.visibleFn = fn
	return a
}

// Handle sets the handler
func (a *Action) Handle(fn ActionHandler) *Action {
	a.handler = fn
	return a
}

// Key returns the action key
func (a *Action) Key() string { return a.key }

// Permission returns the required permission, empty when unrestricted
func (a *Action) Permission() string { return a.permission }

// RequiresConfirmation reports whether the client must confirm first
func (a *Action) RequiresConfirmation() bool { return a.confirm != "" }

// Authorized reports whether gate allows the action
func (a *Action) Authorized(gate Gate) bool {
	return allowed(a.permission, gate)
}

// VisibleFor reports whether the action is offered for row
func (a *Action) VisibleFor(row interface{}) bool {
	return a.visibleFn == nil || a.visibleFn(row)
}

// Execute runs the handler
func (a *Action) Execute(ctx context.Context, row interface{}) error {
	if a.handler == nil {
		return ErrNoHandler
	}
	return a.handler(ctx, row)
}

// ActionConfig is the serialized form of an Action
type ActionConfig struct {
	Key                  string `json:"key"`
	Label                string `json:"label"`
	Icon                 string `json:"icon,omitempty"`
	Variant              string `json:"variant"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	ConfirmMessage       string `json:"confirm_message,omitempty"`
}

// Describe serializes the action
func (a *Action) Describe() ActionConfig {
	return ActionConfig{
		Key:                  a.key,
		Label:                a.label,
		Icon:                 a.icon,
		Variant:              a.variant,
		RequiresConfirmation: a.RequiresConfirmation(),
		ConfirmMessage:       a.confirm,
	}
}

// BulkAction is an action over the selected rows
type BulkAction struct {
	key        string
	label      string
	permission string
	confirm    string
	variant    string
	handler    BulkActionHandler
}

// NewBulkAction creates a bulk action
func NewBulkAction(key string) *BulkAction {
	return &BulkAction{
		key:     key,
		label:   Humanize(key),
		variant: "default",
	}
}

// Label sets the label
func (b *BulkAction) Label(label string) *BulkAction {
	b.label = label
	return b
}

// Variant sets the presentation variant
func (b *BulkAction) Variant(variant string) *BulkAction {
	b.variant = variant
	return b
}

// Can restricts the bulk action to users holding permission
func (b *BulkAction) Can(permission string) *BulkAction {
	b.permission = permission
	return b
}

// Confirm requires a confirmation with the given message
func (b *BulkAction) Confirm(message string) *BulkAction {
	b.confirm = message
	return b
}

// Handle sets the handler
func (b *BulkAction) Handle(fn BulkActionHandler) *BulkAction {
	b.handler = fn
	return b
}

// Key returns the bulk action key
func (b *BulkAction) Key() string { return b.key }

// Permission returns the required permission
func (b *BulkAction) Permission() string { return b.permission }

// Authorized reports whether gate allows the bulk action
func (b *BulkAction) Authorized(gate Gate) bool {
	return allowed(b.permission, gate)
}

// Execute runs the handler over ids
func (b *BulkAction) Execute(ctx context.Context, ids []string) error {
	if b.handler == nil {
		return ErrNoHandler
	}
	return b.handler(ctx, ids)
}

// BulkActionConfig is the serialized form of a BulkAction
type BulkActionConfig struct {
	Key                  string `json:"key"`
	Label                string `json:"label"`
	Variant              string `json:"variant"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
	ConfirmMessage       string `json:"confirm_message,omitempty"`
}

// Describe serializes the bulk action
func (b *BulkAction) Describe() BulkActionConfig {
	return BulkActionConfig{
		Key:                  b.key,
		Label:                b.label,
		Variant:              b.variant,
		RequiresConfirmation: b.confirm != "",
		ConfirmMessage:       b.confirm,
	}
}

func allowed(permission string, gate Gate) bool {
	if permission == "" {
		return true
	}
	return gate != nil && gate(permission)
}
