package service

import "storefront-api/internal/model"

// Identity is the already verified caller, taken from the bearer token.
type Identity struct {
	UserID string
	Email  string
	Role   model.UserRole
}

func (i Identity) IsBusiness() bool {
	return i.Role == model.RoleBusiness
}
