package account

import "accountd/cmd/identity"

// ProfilePatch is the set of profile fields a caller may update.
// A nil field is absent and leaves the stored value untouched.
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Surname  *string `json:"surname,omitempty"`
	Birthday *string `json:"birthday,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Details converts the present fields into a merge patch.
func (p ProfilePatch) Details() identity.Details {
	out := identity.Details{}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("name", p.Name)
	set("surname", p.Surname)
	set("birthday", p.Birthday)
	set("email", p.Email)
	set("phone", p.Phone)
	return out
}

// Empty reports whether no field is present.
func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Surname == nil && p.Birthday == nil && p.Email == nil && p.Phone == nil
}
