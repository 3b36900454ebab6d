package model

// Role is the single role a user acts under for a request.
type Role string

const (
	RoleUnauthenticated Role = "unauthenticated"
	RoleSeller          Role = "seller"
	RoleBuyer           Role = "buyer"
	RoleBroker          Role = "broker"
	RoleAdmin           Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSeller, RoleBuyer, RoleBroker, RoleAdmin:
		return true
	}
	return false
}

// Principal is the acting identity resolved once per request. PartyID is the
// seller, buyer or broker record the user is attached to; it is zero for admins
// and anonymous callers.
type Principal struct {
	UserID         uint `json:"user_id"`
	Role           Role `json:"role"`
	PartyID        uint `json:"party_id"`
	VerifiedBroker bool `json:"verified_broker,omitempty"`
}

// Anonymous is the principal used when no credentials were presented.
var Anonymous = Principal{Role: RoleUnauthenticated}

func (p Principal) Authenticated() bool {
	return p.Role != RoleUnauthenticated && p.Role != "" && p.UserID != 0
}

func (p Principal) BuyerID() (uint, bool) {
	if p.Role != RoleBuyer || p.PartyID == 0 {
		return 0, false
	}
	return p.PartyID, true
}

func (p Principal) BrokerID() (uint, bool) {
	if p.Role != RoleBroker || p.PartyID == 0 {
		return 0, false
	}
	return p.PartyID, true
}

func (p Principal) SellerID() (uint, bool) {
	if p.Role != RoleSeller || p.PartyID == 0 {
		return 0, false
	}
	return p.PartyID, true
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
