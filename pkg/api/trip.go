package api

type CreateTripRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id"`
}

type GetTripResponse struct {
	Trip    *Trip   `json:"trip"`
	Members []*User `json:"members"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

// AddMembersRequest adds participants by ID or by registered email.
type AddMembersRequest struct {
	TripID    string   `json:"trip_id"`
	MemberIDs []string `json:"member_ids,omitempty"`
	Emails    []string `json:"emails,omitempty"`
}

type AddMembersResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripBalancesRequest struct {
	TripID string `json:"trip_id"`
}

type GetTripBalancesResponse struct {
	Balances  []*MemberBalance `json:"balances"`
	Transfers []*Transfer      `json:"transfers"`
}
