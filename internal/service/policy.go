package service

import (
	"time"

	"storefront/internal/model"
)

// canAccess is the single ownership rule for carts and their requests: a
// guest cart is open to anyone holding its id, an owned cart only to its owner.
func canAccess(owner model.Owner, actor model.Actor) bool {
	return owner.IsGuest() || owner.Is(actor)
}

// checkCart applies the ownership rule and then the expiry gate.
func checkCart(cart model.ExpiringCart, owner model.Owner, actor model.Actor, now time.Time) error {
	if !canAccess(owner, actor) {
		return model.ErrForbidden
	}
	if cart.ExpiredAt(now) {
		return model.ErrCartExpired
	}
	return nil
}

func requireAuthenticated(actor model.Actor) error {
	if !actor.Authenticated() {
		return model.ErrUnauthenticated
	}
	return nil
}

func requireStaff(actor model.Actor) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsStaff() {
		return model.ErrStaffOnly
	}
	return nil
}
