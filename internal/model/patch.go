package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Nullable distinguishes an absent JSON field (Set=false) from an explicit
// null (Set=true, Valid=false).
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns nil for null, a pointer to a copy otherwise.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// QRCodePatch is an owner-initiated partial update. Nil pointers and unset
// Nullables leave the column untouched.
type QRCodePatch struct {
	Name        *string
	CurrentURL  *string
	Description Nullable[string]
	IsActive    *bool
	MaxScans    Nullable[int64]
	ExpiresAt   Nullable[time.Time]
	FallbackURL Nullable[string]
}

func (p *QRCodePatch) IsEmpty() bool {
	return p.Name == nil && p.CurrentURL == nil && !p.Description.Set && p.IsActive == nil &&
		!p.MaxScans.Set && !p.ExpiresAt.Set && !p.FallbackURL.Set
}

// Columns maps the patch to gorm column updates. Explicit nulls become nil values.
func (p *QRCodePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.CurrentURL != nil {
		cols["current_url"] = *p.CurrentURL
	}
	if p.Description.Set {
		cols["description"] = p.Description.Ptr()
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.MaxScans.Set {
		cols["max_scans"] = p.MaxScans.Ptr()
	}
	if p.ExpiresAt.Set {
		cols["expires_at"] = p.ExpiresAt.Ptr()
	}
	if p.FallbackURL.Set {
		cols["fallback_url"] = p.FallbackURL.Ptr()
	}
	return cols
}

// Apply mutates code in place; used by stores without a query layer.
func (p *QRCodePatch) Apply(code *QRCode) {
	if p.Name != nil {
		code.Name = *p.Name
	}
	if p.CurrentURL != nil {
		code.CurrentURL = *p.CurrentURL
	}
	if p.Description.Set {
		code.Description = p.Description.Ptr()
	}
	if p.IsActive != nil {
		code.IsActive = *p.IsActive
	}
	if p.MaxScans.Set {
		code.MaxScans = p.MaxScans.Ptr()
	}
	if p.ExpiresAt.Set {
		code.ExpiresAt = p.ExpiresAt.Ptr()
	}
	if p.FallbackURL.Set {
		code.FallbackURL = p.FallbackURL.Ptr()
	}
}
