package auth

import "github.com/google/uuid"

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

type Address struct {
	ID        string      `json:"id"`
	Type      AddressType `json:"type"`
	Street    string      `json:"street"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	ZipCode   string      `json:"zipCode"`
	IsDefault bool        `json:"isDefault"`
}

type Preferences struct {
	Notifications       bool     `json:"notifications"`
	Marketing           bool     `json:"marketing"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
}

func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Marketing: false, DietaryRestrictions: []string{}}
}

// User is the profile handed to clients. The password never leaves the user
// table.
type User struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Phone       string      `json:"phone,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	Addresses   []Address   `json:"addresses"`
	Preferences Preferences `json:"preferences"`
}

type RegisterData struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// UserUpdate is a partial profile edit; nil fields are left alone.
type UserUpdate struct {
	FirstName   *string      `json:"firstName,omitempty"`
	LastName    *string      `json:"lastName,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Addresses   *[]Address   `json:"addresses,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

func (u UserUpdate) apply(user *User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
	if u.Addresses != nil {
		addrs := make([]Address, len(*u.Addresses))
		copy(addrs, *u.Addresses)
		for i := range addrs {
			if addrs[i].ID == "" {
				addrs[i].ID = uuid.NewString()
			}
		}
		user.Addresses = addrs
	}
	if u.Preferences != nil {
		user.Preferences = *u.Preferences
	}
}

// normalize fills fields older records may lack.
func (u *User) normalize() {
	if u.Addresses == nil {
		u.Addresses = []Address{}
	}
	if u.Preferences.DietaryRestrictions == nil {
		u.Preferences.DietaryRestrictions = []string{}
	}
}
