package model

import "encoding/json"

// Role is the role forwarded by the identity provider.
type Role string

const (
	RoleGuest        Role = ""
	RoleCustomer     Role = "customer"
	RoleEmployee     Role = "employee"
	RoleStoreManager Role = "store_manager"
)

// ParseRole maps a header value onto a known role. Unknown values degrade to customer.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleEmployee, RoleStoreManager:
		return Role(s)
	case RoleGuest:
		return RoleGuest
	default:
		return RoleCustomer
	}
}

// Actor is the caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// GuestActor returns an unauthenticated actor.
func GuestActor() Actor {
	return Actor{}
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// IsStaff reports whether the actor may perform in-store staff actions.
func (a Actor) IsStaff() bool {
	return a.Authenticated() && (a.Role == RoleEmployee || a.Role == RoleStoreManager)
}

// Owner is either a guest (no user) or an authenticated user.
// The zero value is a guest owner.
type Owner struct {
	userID string
}

// GuestOwner returns the guest owner.
func GuestOwner() Owner {
	return Owner{}
}

// UserOwner returns an owner bound to userID. An empty id yields a guest owner.
func UserOwner(userID string) Owner {
	return Owner{userID: userID}
}

// OwnerFromNullable builds an owner from a nullable database column.
func OwnerFromNullable(userID *string) Owner {
	if userID == nil {
		return GuestOwner()
	}
	return UserOwner(*userID)
}

// OwnerOf returns the owner a new cart created by actor should carry.
func OwnerOf(a Actor) Owner {
	return UserOwner(a.UserID)
}

// IsGuest reports whether nobody owns the resource.
func (o Owner) IsGuest() bool {
	return o.userID == ""
}

// UserID returns the owning user and whether one is set.
func (o Owner) UserID() (string, bool) {
	return o.userID, o.userID != ""
}

// Nullable returns the owner as a nullable column value.
func (o Owner) Nullable() *string {
	if o.IsGuest() {
		return nil
	}
	id := o.userID
	return &id
}

// Is reports whether the owner is the given actor.
func (o Owner) Is(a Actor) bool {
	return !o.IsGuest() && a.Authenticated() && o.userID == a.UserID
}

// MarshalJSON encodes a guest owner as null and a user owner as the user id.
func (o Owner) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Nullable())
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var id *string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*o = OwnerFromNullable(id)
	return nil
}
